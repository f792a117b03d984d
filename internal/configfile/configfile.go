// Package configfile decodes the YAML or JSON registry files the harvester
// reads (queries, publishers).
package configfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decoder struct {
	name string
	exts []string
	fn   func([]byte, any) error
}

var decoders = []decoder{
	{name: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
	{name: "json", exts: []string{".json"}, fn: json.Unmarshal},
}

// Load reads path and decodes it into v. kind names the file in errors.
func Load(path, kind string, v any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", kind)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s file: %w", kind, err)
	}
	return Decode(raw, filepath.Ext(path), kind, v)
}

// Decode picks the decoder from ext. An unknown or missing extension tries
// YAML then JSON and reports the last failure.
func Decode(data []byte, ext, kind string, v any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))

	candidates := decoders
	for _, d := range decoders {
		for _, e := range d.exts {
			if e == ext {
				candidates = []decoder{d}
			}
		}
	}

	var lastErr error
	for _, d := range candidates {
		if err := d.fn(data, v); err != nil {
			lastErr = fmt.Errorf("decode %s %s: %w", d.name, kind, err)
			continue
		}
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return errors.New(kind + " file format not recognized (expected YAML or JSON)")
}

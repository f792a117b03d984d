// Package storage remembers the digest of the last published payload per
// query so unchanged results are not published again.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks the last published payload digest per query id.
type Store interface {
	Close() error
	// Changed reports whether digest differs from the live record for queryID.
	Changed(queryID, digest string) (bool, error)
	// Record stores digest as the latest published payload for queryID.
	Record(queryID, digest string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore treats every payload as changed.
type noopStore struct{}

func (noopStore) Close() error                         { return nil }
func (noopStore) Changed(string, string) (bool, error) { return true, nil }
func (noopStore) Record(string, string) error          { return nil }

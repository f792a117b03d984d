package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/samvad-hq/bitbucket-harvester/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))

	log.InfoObj("request done", "bitbucket_request", map[string]any{"status": 200})
	log.DebugObj("debug", "k", 1)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	field, ok := ctx["bitbucket_request"].(map[string]any)
	if !ok || field["status"] != 200 {
		t.Fatalf("unexpected field %#v", ctx)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestInitToWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := InitTo(&config.Config{LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("InitTo: %v", err)
	}
	defer func() { S = nil }()

	log.DebugObj("hidden", "k", 1)
	log.InfoObj("visible", "query_id", "profile")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["msg"] != "visible" || entry["query_id"] != "profile" {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field in %#v", entry)
	}
}

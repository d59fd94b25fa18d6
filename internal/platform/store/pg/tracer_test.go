package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	in := "SELECT id\n\t  FROM narrative_snapshots\r\n WHERE taken_at > $1 "
	if got := Compact(in); got != "SELECT id FROM narrative_snapshots WHERE taken_at > $1" {
		t.Fatalf("Compact = %q", got)
	}
}

func TestTracerLevels(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 1", ElapsedUS: 1500})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT pg_sleep(1)", ElapsedUS: 1_000_000, Slow: true, Err: errors.New("boom")})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("tracer should log despite the root level, got %d lines", len(lines))
	}
	var first, second map[string]any
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatal(err)
	}
	if first["level"] != "info" || first["elapsed_ms"] != 1.5 || first["component"] != "pg" {
		t.Fatalf("first = %v", first)
	}
	if second["level"] != "warn" || second["slow"] != true || second["error"] != "boom" {
		t.Fatalf("second = %v", second)
	}
}

func TestOpenRejectsBadURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://nope"}, nil, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

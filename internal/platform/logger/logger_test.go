package logger

import (
	"bytes"
	"context"
	"testing"

	kit "narrativeradar/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestInitAndContextLoggers(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "debug",
		Format:       "console",
		Service:      "radar-test",
		Writer:       &buf,
		StaticFields: map[string]string{"build": "unit"},
	})

	Get().Info().Msg("root-line")
	Named("scorer").Info().Msg("named-line")

	ctx := WithRequest(WithRun(context.Background(), "run-42"), "req-7")
	C(ctx).Info().Msg("ctx-line")
	C(context.Background()).Debug().Msg("bare-line")

	out := buf.String()
	kit.MustContain(t, out, "root-line")
	kit.MustContain(t, out, "named-line")
	kit.MustContain(t, out, "scorer")
	kit.MustContain(t, out, "run-42")
	kit.MustContain(t, out, "req-7")
	kit.MustContain(t, out, "radar-test")
	kit.MustContain(t, out, "unit")
}

func TestRunID(t *testing.T) {
	if got := RunID(context.Background()); got != "" {
		t.Fatalf("RunID(empty) = %q", got)
	}
	ctx := WithRun(context.Background(), "abc")
	if got := RunID(ctx); got != "abc" {
		t.Fatalf("RunID = %q, want abc", got)
	}
	if WithRun(ctx, "") != ctx {
		t.Fatalf("WithRun with empty id should return ctx unchanged")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE", "4")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "svc" {
		t.Fatalf("FromEnv = %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 4 {
		t.Fatalf("FromEnv caller/sample = %+v", opt)
	}
}

func TestSetForTest(t *testing.T) {
	var buf bytes.Buffer
	restore := SetForTest(&buf)
	Named("probe").Debug().Str("k", "v").Msg("captured")
	restore()
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"probe"`)) || !bytes.Contains(buf.Bytes(), []byte(`"k":"v"`)) {
		t.Fatalf("captured = %s", buf.String())
	}
	buf.Reset()
	Get().Info().Msg("after restore")
	if buf.Len() != 0 {
		t.Fatalf("restore did not detach writer")
	}
}

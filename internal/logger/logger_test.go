package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestJSONLoggerWritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("decoded example", "score", -0.5, "steps", 12)

	out := buf.String()
	for _, want := range []string{"decoded example", `"score"`, `"steps"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}

func TestJSONLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info record leaked through warn filter: %s", buf.String())
	}
	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn record missing: %s", buf.String())
	}
}

func TestPrettyHandlerFormatsRecord(t *testing.T) {
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelDebug)
	log.With("decode", "dec_1").Info("search finished", "score", -1.25)

	out := buf.String()
	if !strings.Contains(out, "search finished") {
		t.Fatalf("message missing: %q", out)
	}
	if !strings.Contains(out, "decode=dec_1") {
		t.Fatalf("With attr missing: %q", out)
	}
	if !strings.Contains(out, "score=-1.25") {
		t.Fatalf("record attr missing: %q", out)
	}
}

func TestPrettyHandlerQuotesSpacedStrings(t *testing.T) {
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.Info("render", "text", "two words")
	if !strings.Contains(buf.String(), `text="two words"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestWithGroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.WithGroup("beam").With("size", 4).Info("configured")
	if !strings.Contains(buf.String(), "beam.size=4") {
		t.Fatalf("group prefix missing: %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	ctx := WithContext(context.Background(), log)
	if got := FromContext(ctx); got != log {
		t.Fatal("FromContext did not return stored logger")
	}
	if got := FromContext(context.Background()); got == nil {
		t.Fatal("FromContext must fall back to a default logger")
	}
}

package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("statement analysed")

	if !strings.Contains(buf.String(), "statement analysed") {
		t.Errorf("output = %q, want message", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithLevel(t *testing.T) {
	log := NewWithLevel("warn", true)
	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("from context")

	if buf.Len() == 0 {
		t.Error("expected output from the stored logger")
	}
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() == zerolog.Disabled {
		t.Error("default logger should be enabled")
	}
}

func TestWithFieldsAndComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithComponent(NewWithWriter(buf), "store")
	log = WithFields(log, map[string]any{"account_id": "a1"})

	log.Info().Msg("saved")

	out := buf.String()
	for _, want := range []string{`"component":"store"`, `"account_id":"a1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

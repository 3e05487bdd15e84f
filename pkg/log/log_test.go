package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, f Formatter) Logger {
	return NewLogger(WithLevel(DebugLevel), WithFormatter(f), WithOutput(NewWriterOutput(buf)))
}

func TestTextFormatterFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, &TextFormatter{DisableTimestamp: true})
	l.With(Component("program")).Info("event appended", Uint64("key", 42), Int("len", 1))

	line := buf.String()
	for _, want := range []string{"INFO", "event appended", "component=program", "key=42", "len=1"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, &JSONFormatter{})
	l.WithError(errors.New("boom")).Warn("sink failed")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if m["msg"] != "sink failed" || m["level"] != "WARN" || m["error"] != "boom" {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(WarnLevel), WithFormatter(&TextFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l.Info("dropped")
	l.Debugf("dropped too", "k", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected error line")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", DebugLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"ERROR", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestApplyConfigRedacts(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "info", Format: "text", Outputs: []OutputConfig{{Type: "null"}}, RedactKeys: []string{"caller"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var buf bytes.Buffer
	bl := l.(*BaseLogger)
	bl.outputs = []Output{NewWriterOutput(&buf)}
	l.Info("append", Str("caller", "alice"))
	if strings.Contains(buf.String(), "alice") || !strings.Contains(buf.String(), "[REDACTED]") {
		t.Fatalf("expected redaction, got %q", buf.String())
	}
}

func TestApplyConfigRejectsUnknownFormat(t *testing.T) {
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSamplerKeepsEveryNth(t *testing.T) {
	s := newSampler(1, 2)
	var kept int
	for i := 0; i < 5; i++ {
		if s.allow(0, "m") {
			kept++
		}
	}
	// calls 1, 2 and 4 pass
	if kept != 3 {
		t.Fatalf("kept %d want 3", kept)
	}
}

func TestRedirectStdLog(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, &TextFormatter{DisableTimestamp: true})
	std := ToStdLogger(l)
	std.Printf("pebble: compaction done")
	if !strings.Contains(buf.String(), "pebble: compaction done") || !strings.Contains(buf.String(), "source=stdlog") {
		t.Fatalf("unexpected: %q", buf.String())
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line %q is not JSON: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: FormatJSON}, "svc", &buf)
	l.WithComponent("dag").
		WithFields(Fields(FieldGraph, "motion")).
		Info("cycle finished", Fields(FieldCycle, 3), Fields(FieldStatus, "success"))

	lines := decodeLines(t, &buf)
	want := []map[string]interface{}{{
		"level":        "info",
		"message":      "cycle finished",
		FieldService:   "svc",
		FieldComponent: "dag",
		FieldGraph:     "motion",
		FieldCycle:     float64(3),
		FieldStatus:    "success",
	}}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level     string
		want      []string
		wantDebug bool
	}{
		{"debug", []string{"d", "i", "w", "e"}, true},
		{"warn", []string{"w", "e"}, false},
		{"ERROR", []string{"e"}, false},
		{"disabled", nil, false},
		{"bogus", []string{"i", "w", "e"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(&Config{Level: tt.level, Format: FormatJSON}, "", &buf)
			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")

			var got []string
			for _, m := range decodeLines(t, &buf) {
				got = append(got, m["message"].(string))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("messages (-want +got):\n%s", diff)
			}
			if l.DebugEnabled() != tt.wantDebug {
				t.Errorf("DebugEnabled = %v", l.DebugEnabled())
			}
		})
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, "svc", &buf)
	l.Warn("slow node", Fields(FieldNode, "detector"))

	out := buf.String()
	for _, s := range []string{"[WRN]", "slow node", "node:detector"} {
		if !strings.Contains(out, s) {
			t.Errorf("console output %q lacks %q", out, s)
		}
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("dropped", Fields("k", "v"))
	if l.DebugEnabled() {
		t.Error("nop logger reports debug enabled")
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := global.Load()
	t.Cleanup(func() { global.Store(prev) })

	global.Store(nil)
	if GetGlobalLogger() == nil {
		t.Fatal("no default global logger")
	}

	l := NewNop()
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("SetGlobalLogger did not replace the global logger")
	}
	Info("through global")
	if WithComponent("x") == nil {
		t.Error("nil component logger")
	}

	Init(Config{Level: "warn", Format: FormatJSON})
	if GetGlobalLogger() == l {
		t.Error("Init did not replace the global logger")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{Level: "debug"}
	cfg.ApplyDefaults()
	want := Config{Level: "debug", Format: FormatConsole, Output: "stderr", Timestamp: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"json", Config{Level: "info", Format: "json"}, ""},
		{"console stdout", Config{Level: "debug", Format: "console", Output: "stdout"}, ""},
		{"bad level", Config{Level: "loud", Format: "json"}, "logging.level"},
		{"bad format", Config{Level: "info", Format: "xml"}, "logging.format"},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, "logging.output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  map[string]interface{}
		want map[string]interface{}
	}{
		{"odd pair dropped", Fields("a", 1, "b"), map[string]interface{}{"a": 1}},
		{"non-string key dropped", Fields(1, "x", "k", "v"), map[string]interface{}{"k": "v"}},
		{
			"error",
			ErrorFields("build", errors.New("cycle"), FieldNode, "n1"),
			map[string]interface{}{FieldOperation: "build", FieldError: "cycle", FieldNode: "n1"},
		},
		{"nil error", ErrorFields("build", nil), map[string]interface{}{FieldOperation: "build"}},
		{
			"duration",
			DurationFields("step", 1500*time.Microsecond),
			map[string]interface{}{FieldOperation: "step", FieldDuration: 1.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"plain", New(ErrCodeUnknownNode, "gone"), "UNKNOWN_NODE: gone"},
		{"with cause", ConfigFailed("detector", stderrors.New("threshold < 0")),
			`CONFIG_ERROR: configuring node "detector" failed: threshold < 0`},
		{"invalid input", InvalidInput("pipeline", "no file given"), "INVALID_INPUT: invalid input: no file given"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("build: %w", CyclicDependency("n1", "n2"))

	if !stderrors.Is(wrapped, Sentinel(ErrCodeCyclicDependency)) {
		t.Error("wrapped error does not match its sentinel")
	}
	if stderrors.Is(wrapped, Sentinel(ErrCodeUnknownNode)) {
		t.Error("matched a different code")
	}
	if stderrors.Is(wrapped, stderrors.New("CYCLIC_DEPENDENCY")) {
		t.Error("matched a plain error")
	}
	if !HasCode(wrapped, ErrCodeCyclicDependency) || HasCode(stderrors.New("x"), ErrCodeInternal) {
		t.Error("HasCode disagrees with errors.Is")
	}
}

func TestCauseChain(t *testing.T) {
	cause := pathError("missing")
	err := fmt.Errorf("load: %w", InvalidPipeline("motion", "cannot read").WithCause(cause))
	if !stderrors.Is(err, cause) {
		t.Error("cause unreachable through Unwrap")
	}
	if !HasCode(err, ErrCodeInvalidPipeline) {
		t.Error("code lost behind fmt wrapping")
	}
}

type pathError string

func (e pathError) Error() string { return string(e) }

func TestDetails(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want map[string]any
	}{
		{"unknown node", UnknownNode("n1"), map[string]any{"node": "n1"}},
		{"unknown port", UnknownPort("src", "frame", "output"),
			map[string]any{"node": "src", "port": "frame", "direction": "output"}},
		{"type mismatch", TypeMismatch("a.out", "int", "b.in", "string"),
			map[string]any{"source": "a.out", "source_type": "int", "sink": "b.in", "sink_type": "string"}},
		{"input with field", InvalidInput("f", "bad"), map[string]any{"field": "f"}},
		{"input without field", InvalidInput("", "bad"), nil},
		{"added detail", New(ErrCodeConfig, "x").WithDetail("path", "a.yml"), map[string]any{"path": "a.yml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.err.Details); diff != "" {
				t.Errorf("details mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		err        *AppError
		code       ErrorCode
		structural bool
	}{
		{UnknownNode("n1"), ErrCodeUnknownNode, true},
		{UnknownPort("src", "frame", "output"), ErrCodeUnknownPort, true},
		{TypeMismatch("a", "int", "b", "string"), ErrCodeTypeMismatch, true},
		{CyclicDependency("a", "b"), ErrCodeCyclicDependency, true},
		{ConfigFailed("a", nil), ErrCodeConfig, false},
		{InitializationFailed("a", "initialize"), ErrCodeInitialization, false},
		{InvalidPipeline("p", "bad"), ErrCodeInvalidPipeline, false},
		{ComponentNotFound("motion"), ErrCodeComponentNotFound, false},
		{Validation("name: is required"), ErrCodeInvalidInput, false},
		{Internal(nil), ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if IsStructuralCode(tt.code) != tt.structural {
				t.Errorf("IsStructuralCode(%s) = %v", tt.code, !tt.structural)
			}
			if tt.err.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) != nil")
	}

	orig := UnknownNode("n1")
	if Wrap(orig) != orig || Wrap(fmt.Errorf("outer: %w", orig)) != orig {
		t.Error("Wrap did not return the AppError in the chain")
	}

	plain := stderrors.New("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("Wrap(plain) = %+v", got)
	}
}

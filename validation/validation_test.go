package validation

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/framegraph/errors"
)

func TestValidatorRules(t *testing.T) {
	endpoint := regexp.MustCompile(`^[^.]+\.[^.]+$`)

	v := New()
	v.Unique("nodes", "nodes[0].name", "source").
		Unique("nodes", "nodes[1].name", "detector").
		Unique("ports", "ports[0]", "source").
		Unique("nodes", "nodes[2].name", "").
		Unique("nodes", "nodes[3].name", "source")
	v.Pattern("connections[0].from", "source.frame", endpoint).
		Pattern("connections[0].to", "detector", endpoint).
		Pattern("connections[1].to", "", endpoint)
	v.Custom(true, "dependencies[0].from", "fine").
		Custom(false, "dependencies[0].to", "references undeclared node \"x\"")

	want := FieldErrors{
		{Field: "nodes[3].name", Message: `duplicate nodes "source"`},
		{Field: "connections[0].to", Message: "does not match required format"},
		{Field: "dependencies[0].to", Message: `references undeclared node "x"`},
	}
	if diff := cmp.Diff(want, v.Errors()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatorErr(t *testing.T) {
	var v Validator
	if err := v.Err(); err != nil {
		t.Fatalf("clean validator: %v", err)
	}

	v.AddError("name", "is required")
	v.AddError("count", "must be at least 1")
	err := v.Err()
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("Err = %v, want INVALID_INPUT", err)
	}
	appErr := err.(*errors.AppError)
	if appErr.Message != "name: is required; count: must be at least 1" {
		t.Errorf("message = %q", appErr.Message)
	}
	if fields, ok := appErr.Details["fields"].(FieldErrors); !ok || len(fields) != 2 {
		t.Errorf("details = %v", appErr.Details)
	}
}

type engineOptions struct {
	MaxFailures int    `mapstructure:"max_failures" validate:"gte=0"`
	Mode        string `mapstructure:"mode" validate:"required,oneof=strict lenient"`
	Listen      string `yaml:"listen" validate:"omitempty,hostname_port"`
}

type testConfig struct {
	Name   string        `mapstructure:"name" validate:"required"`
	Engine engineOptions `mapstructure:"engine"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name string
		cfg  testConfig
		want FieldErrors
	}{
		{
			name: "valid",
			cfg:  testConfig{Name: "svc", Engine: engineOptions{Mode: "strict"}},
		},
		{
			name: "invalid",
			cfg: testConfig{Engine: engineOptions{
				MaxFailures: -1,
				Mode:        "loose",
				Listen:      "nowhere",
			}},
			want: FieldErrors{
				{Field: "name", Message: "is required"},
				{Field: "engine.max_failures", Message: "must be at least 0"},
				{Field: "engine.mode", Message: "must be one of: strict lenient"},
				{Field: "engine.listen", Message: "must be a host:port address"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.cfg)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("ValidateStruct: %v", err)
				}
				return
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("ValidateStruct = %v, want INVALID_INPUT", err)
			}
			got := err.(*errors.AppError).Details["fields"]
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"MaxFailures": "max_failures",
		"Name":        "name",
		"sampleRate":  "sample_rate",
	} {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kbukum/framegraph/errors"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors joins as "field: message; field: message".
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// Validator accumulates field errors for rules that span several fields.
// The zero value is ready to use.
type Validator struct {
	errs FieldErrors
	seen map[[2]string]bool
}

func New() *Validator { return &Validator{} }

// AddError records a failure on field.
func (v *Validator) AddError(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// Errors returns the failures recorded so far.
func (v *Validator) Errors() FieldErrors { return v.errs }

// Err returns nil when nothing failed, else an INVALID_INPUT AppError with
// the failures under Details["fields"].
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	appErr := errors.Validation(v.errs.Error())
	appErr.Details = map[string]any{"fields": v.errs}
	return appErr
}

// Unique fails field when value was already seen in scope. Empty values
// are ignored.
func (v *Validator) Unique(scope, field, value string) *Validator {
	if value == "" {
		return v
	}
	key := [2]string{scope, value}
	if v.seen[key] {
		v.AddError(field, fmt.Sprintf("duplicate %s %q", scope, value))
		return v
	}
	if v.seen == nil {
		v.seen = make(map[[2]string]bool)
	}
	v.seen[key] = true
	return v
}

// Pattern fails field when a non-empty value does not match re.
func (v *Validator) Pattern(field, value string, re *regexp.Regexp) *Validator {
	if value != "" && !re.MatchString(value) {
		v.AddError(field, "does not match required format")
	}
	return v
}

// Custom fails field with message unless ok.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

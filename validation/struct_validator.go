package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/framegraph/errors"
)

// structValidator names fields by their mapstructure, yaml or json key so
// messages match what the user wrote in the config file.
var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(keyName)
	return v
})

func keyName(f reflect.StructField) string {
	for _, tag := range [...]string{"mapstructure", "yaml", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return toSnakeCase(f.Name)
}

// ValidateStruct checks `validate` tags on s. Failures come back as one
// INVALID_INPUT AppError with every field listed.
func ValidateStruct(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Validation("validation failed").WithCause(err)
	}

	v := New()
	for _, fe := range fieldErrs {
		v.AddError(fieldPath(fe.Namespace()), describe(fe))
	}
	return v.Err()
}

// fieldPath drops the root type from a namespace such as
// "Config.engine.failure_memory.max_failures".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

var tagMessages = map[string]string{
	"required":      "is required",
	"min":           "must be at least ",
	"gte":           "must be at least ",
	"max":           "must be at most ",
	"lte":           "must be at most ",
	"oneof":         "must be one of: ",
	"required_if":   "is required when ",
	"hostname_port": "must be a host:port address",
}

func describe(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.HasSuffix(msg, " ") {
		msg += fe.Param()
	}
	return msg
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

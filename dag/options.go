package dag

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Options carries a unit's parameters. Values usually come from YAML, so
// getters convert loosely between numeric and string forms.
type Options map[string]any

// Params maps node names to their Options.
type Params map[string]Options

// OptionsFromViper returns every setting of v as Options.
func OptionsFromViper(v *viper.Viper) Options {
	return Options(v.AllSettings())
}

// Has reports whether key is set.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns key as a string, or def when unset or not convertible.
func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// Int returns key as an int, or def when unset or not convertible.
func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

// Float returns key as a float64, or def when unset or not convertible.
func (o Options) Float(key string, def float64) float64 {
	v, ok := o[key]
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// Bool returns key as a bool, or def when unset or not convertible.
func (o Options) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Duration returns key as a duration. Strings use time.ParseDuration syntax;
// bare numbers are nanoseconds.
func (o Options) Duration(key string, def time.Duration) time.Duration {
	v, ok := o[key]
	if !ok {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return def
	}
	return d
}

// Sub returns the nested block at key, or empty Options.
func (o Options) Sub(key string) Options {
	v, ok := o[key]
	if !ok {
		return Options{}
	}
	switch m := v.(type) {
	case Options:
		return m
	case map[string]any:
		return Options(m)
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return Options{}
	}
	return Options(m)
}

// Decode copies the options into a struct with mapstructure tags.
func (o Options) Decode(target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(o))
}

// Merge returns a copy of o with other's keys layered on top.
func (o Options) Merge(other Options) Options {
	out := make(Options, len(o)+len(other))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

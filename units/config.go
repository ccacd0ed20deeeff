package units

import (
	"github.com/kbukum/framegraph/dag"
	"github.com/kbukum/framegraph/validation"
)

// decode layers opts over the defaults already in cfg and validates the
// result.
func decode(opts dag.Options, cfg any) error {
	if err := opts.Decode(cfg); err != nil {
		return err
	}
	return validation.ValidateStruct(cfg)
}

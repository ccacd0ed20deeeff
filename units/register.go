package units

import (
	"errors"
	"io"

	"github.com/kbukum/framegraph/dag"
)

// Component names used in pipeline definitions.
const (
	ComponentFrameSource     = "frame_source"
	ComponentMotionDetector  = "motion_detector"
	ComponentTrackCounter    = "track_counter"
	ComponentDetectionWriter = "detection_writer"
)

type registerOptions struct {
	output io.Writer
}

// RegisterOption adjusts the factories added by Register.
type RegisterOption func(*registerOptions)

// WithOutput sends DetectionWriter lines to w instead of the log.
func WithOutput(w io.Writer) RegisterOption {
	return func(o *registerOptions) { o.output = w }
}

// Register adds every unit in this package to r.
func Register(r *dag.Registry, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	return errors.Join(
		r.Register(ComponentFrameSource, func(name string) (dag.Unit, error) {
			return NewFrameSource(name), nil
		}),
		r.Register(ComponentMotionDetector, func(name string) (dag.Unit, error) {
			return NewMotionDetector(name), nil
		}),
		r.Register(ComponentTrackCounter, func(name string) (dag.Unit, error) {
			return NewTrackCounter(name), nil
		}),
		r.Register(ComponentDetectionWriter, func(name string) (dag.Unit, error) {
			return NewDetectionWriter(name, o.output), nil
		}),
	)
}

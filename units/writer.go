package units

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/framegraph/dag"
	"github.com/kbukum/framegraph/logger"
)

// Output formats understood by DetectionWriter.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// WriterConfig configures a DetectionWriter.
type WriterConfig struct {
	// Format is "text" or "json".
	Format string `mapstructure:"format" validate:"oneof=text json"`
	// Path, when set, appends lines to a file opened by Initialize instead of
	// the writer given at construction.
	Path string `mapstructure:"path"`
	// Empty also reports frames without detections.
	Empty bool `mapstructure:"empty"`
}

// DetectionWriter reports each frame's detections, one line per detection.
// Without a destination it logs them at info level.
type DetectionWriter struct {
	name string
	cfg  WriterConfig
	log  *logger.Logger

	out  io.Writer
	file *os.File

	detections []Detection
	count      int
	hasCount   bool
	written    int
}

var (
	_ dag.Unit         = (*DetectionWriter)(nil)
	_ dag.Resetter     = (*DetectionWriter)(nil)
	_ dag.PortProvider = (*DetectionWriter)(nil)
	_ io.Closer        = (*DetectionWriter)(nil)
)

// NewDetectionWriter creates a writer sending lines to w. A nil w logs.
func NewDetectionWriter(name string, w io.Writer) *DetectionWriter {
	return &DetectionWriter{
		name: name,
		cfg:  WriterConfig{Format: FormatText},
		log:  logger.WithComponent("units").WithFields(logger.Fields(logger.FieldNode, name)),
		out:  w,
	}
}

func (w *DetectionWriter) Name() string { return w.name }

func (w *DetectionWriter) Configure(opts dag.Options) error {
	cfg := WriterConfig{Format: FormatText}
	if err := decode(opts, &cfg); err != nil {
		return err
	}
	w.cfg = cfg
	return nil
}

// Initialize opens Path when configured.
func (w *DetectionWriter) Initialize() bool {
	if w.cfg.Path == "" || w.file != nil {
		return true
	}
	f, err := os.OpenFile(w.cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		w.log.Error("cannot open detection output", logger.ErrorFields("open", err, "path", w.cfg.Path))
		return false
	}
	w.file = f
	w.out = f
	return true
}

// Step writes the current detections. It fails when the destination does.
func (w *DetectionWriter) Step() bool {
	dets := w.detections
	w.detections = nil
	if len(dets) == 0 && !w.cfg.Empty {
		return true
	}

	if w.out == nil {
		fields := logger.Fields("detections", len(dets))
		if len(dets) > 0 {
			fields["frame"] = dets[0].Frame
		}
		if w.hasCount {
			fields["total"] = w.count
		}
		w.log.Info("detections", fields)
		w.written += len(dets)
		return true
	}

	for _, d := range dets {
		if err := w.writeLine(d); err != nil {
			w.log.Error("writing detection failed", logger.ErrorFields("write", err))
			return false
		}
		w.written++
	}
	if len(dets) == 0 {
		if _, err := fmt.Fprintln(w.out, "no detections"); err != nil {
			return false
		}
	}
	return true
}

func (w *DetectionWriter) writeLine(d Detection) error {
	switch w.cfg.Format {
	case FormatJSON:
		line := struct {
			Detection
			Total *int `json:"total,omitempty"`
		}{Detection: d}
		if w.hasCount {
			total := w.count
			line.Total = &total
		}
		data, err := json.Marshal(line)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w.out, "%s\n", data)
		return err
	default:
		if w.hasCount {
			_, err := fmt.Fprintf(w.out, "%s total=%d\n", d, w.count)
			return err
		}
		_, err := fmt.Fprintln(w.out, d.String())
		return err
	}
}

// Reset clears pending input and the written count.
func (w *DetectionWriter) Reset() bool {
	w.detections = nil
	w.hasCount = false
	w.count = 0
	w.written = 0
	return true
}

// Close closes the file opened by Initialize, if any.
func (w *DetectionWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.out = nil
	return err
}

// Written returns how many detections were reported since the last reset.
func (w *DetectionWriter) Written() int { return w.written }

// DetectionsIn receives a frame's detections.
func (w *DetectionWriter) DetectionsIn() dag.Input[[]Detection] {
	return dag.NewInput("detections", func(d []Detection) { w.detections = d })
}

// CountIn receives a running total to print alongside each detection.
func (w *DetectionWriter) CountIn() dag.Input[int] {
	return dag.NewInput("count", func(n int) {
		w.count = n
		w.hasCount = true
	})
}

func (w *DetectionWriter) Outputs() []dag.OutputPort { return nil }

func (w *DetectionWriter) Inputs() []dag.InputPort {
	return []dag.InputPort{w.DetectionsIn(), w.CountIn()}
}

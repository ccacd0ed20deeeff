package units

import (
	"github.com/kbukum/framegraph/dag"
	"github.com/kbukum/framegraph/logger"
)

// DetectorConfig configures a MotionDetector.
type DetectorConfig struct {
	// Alpha is the background learning rate.
	Alpha float64 `mapstructure:"alpha" validate:"gt=0,lte=1"`
	// Threshold is the mean absolute difference a cell must exceed.
	Threshold float64 `mapstructure:"threshold" validate:"gte=0"`
	// Cell is the side of the square regions compared against the background.
	Cell int `mapstructure:"cell" validate:"gte=1"`
}

// DefaultDetectorConfig returns the defaults used before options are applied.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{Alpha: 0.1, Threshold: 12, Cell: 8}
}

// MotionDetector keeps an exponential running average of the frames it sees
// and reports every cell whose mean absolute difference from that average
// exceeds the threshold. The first frame only seeds the background.
type MotionDetector struct {
	name string
	cfg  DetectorConfig
	log  *logger.Logger

	frame      Frame
	lastIndex  int
	background []float64
	width      int
	height     int
	detections []Detection
}

var (
	_ dag.Unit         = (*MotionDetector)(nil)
	_ dag.Resetter     = (*MotionDetector)(nil)
	_ dag.PortProvider = (*MotionDetector)(nil)
)

// NewMotionDetector creates a detector with default settings.
func NewMotionDetector(name string) *MotionDetector {
	return &MotionDetector{
		name:      name,
		cfg:       DefaultDetectorConfig(),
		log:       logger.WithComponent("units").WithFields(logger.Fields(logger.FieldNode, name)),
		lastIndex: -1,
	}
}

func (d *MotionDetector) Name() string { return d.name }

func (d *MotionDetector) Configure(opts dag.Options) error {
	cfg := DefaultDetectorConfig()
	if err := decode(opts, &cfg); err != nil {
		return err
	}
	d.cfg = cfg
	return nil
}

func (d *MotionDetector) Initialize() bool {
	d.Reset()
	return true
}

// Step compares the current input frame with the background. It fails when
// no valid frame has been delivered.
func (d *MotionDetector) Step() bool {
	f := d.frame
	if !f.Valid() {
		d.log.Warn("no frame to process")
		return false
	}
	if f.Index == d.lastIndex {
		// Same frame again, typically through an optional edge whose source
		// failed. Nothing new to report.
		d.detections = nil
		return true
	}
	d.lastIndex = f.Index

	if d.background == nil || d.width != f.Width || d.height != f.Height {
		d.seed(f)
		d.detections = nil
		return true
	}

	d.detections = d.compare(f)
	d.learn(f)
	if len(d.detections) > 0 && d.log.DebugEnabled() {
		d.log.Debug("motion detected", logger.Fields("frame", f.Index, "regions", len(d.detections)))
	}
	return true
}

func (d *MotionDetector) seed(f Frame) {
	d.width, d.height = f.Width, f.Height
	d.background = make([]float64, len(f.Pixels))
	for i, p := range f.Pixels {
		d.background[i] = float64(p)
	}
}

func (d *MotionDetector) compare(f Frame) []Detection {
	var out []Detection
	cell := d.cfg.Cell
	for y0 := 0; y0 < f.Height; y0 += cell {
		for x0 := 0; x0 < f.Width; x0 += cell {
			x1, y1 := min(x0+cell, f.Width), min(y0+cell, f.Height)
			var sum float64
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					i := y*f.Width + x
					diff := float64(f.Pixels[i]) - d.background[i]
					if diff < 0 {
						diff = -diff
					}
					sum += diff
				}
			}
			mean := sum / float64((x1-x0)*(y1-y0))
			if mean > d.cfg.Threshold {
				out = append(out, Detection{
					Frame: f.Index, X: x0, Y: y0,
					Width: x1 - x0, Height: y1 - y0,
					Score: mean,
				})
			}
		}
	}
	return out
}

func (d *MotionDetector) learn(f Frame) {
	a := d.cfg.Alpha
	for i, p := range f.Pixels {
		d.background[i] = (1-a)*d.background[i] + a*float64(p)
	}
}

// Reset forgets the background.
func (d *MotionDetector) Reset() bool {
	d.background = nil
	d.width, d.height = 0, 0
	d.lastIndex = -1
	d.detections = nil
	return true
}

// FrameIn receives frames.
func (d *MotionDetector) FrameIn() dag.Input[Frame] {
	return dag.NewInput("frame", func(f Frame) { d.frame = f })
}

// DetectionsOut carries the detections of the most recent step.
func (d *MotionDetector) DetectionsOut() dag.Output[[]Detection] {
	return dag.NewOutput("detections", func() []Detection { return d.detections })
}

func (d *MotionDetector) Outputs() []dag.OutputPort { return []dag.OutputPort{d.DetectionsOut()} }
func (d *MotionDetector) Inputs() []dag.InputPort   { return []dag.InputPort{d.FrameIn()} }

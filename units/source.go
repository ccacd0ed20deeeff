package units

import (
	"math/rand/v2"

	"github.com/kbukum/framegraph/dag"
	"github.com/kbukum/framegraph/logger"
)

// SourceConfig configures a FrameSource.
type SourceConfig struct {
	// Count is how many frames are produced before Step starts failing.
	Count int `mapstructure:"count" validate:"gte=1"`
	// Width and Height are the frame dimensions.
	Width  int `mapstructure:"width" validate:"gte=8"`
	Height int `mapstructure:"height" validate:"gte=8"`
	// Seed drives the background noise.
	Seed uint64 `mapstructure:"seed"`
	// Object is the side of the bright square moving across the frame.
	// Zero leaves the scene static.
	Object int `mapstructure:"object" validate:"gte=0"`
	// Speed is how many pixels the square moves per frame.
	Speed int `mapstructure:"speed" validate:"gte=0"`
	// Noise is the amplitude of the background noise.
	Noise int `mapstructure:"noise" validate:"gte=0,lte=100"`
}

// DefaultSourceConfig returns the defaults used before options are applied.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{Count: 100, Width: 64, Height: 48, Seed: 1, Object: 8, Speed: 2, Noise: 4}
}

const (
	backgroundLevel = 32
	objectLevel     = 224
)

// FrameSource emits synthetic frames: seeded background noise with a
// square moving diagonally across it. Reset rewinds to the first frame.
type FrameSource struct {
	name string
	cfg  SourceConfig
	log  *logger.Logger

	rng      *rand.Rand
	produced int
	frame    Frame
}

var (
	_ dag.Unit         = (*FrameSource)(nil)
	_ dag.Resetter     = (*FrameSource)(nil)
	_ dag.PortProvider = (*FrameSource)(nil)
)

// NewFrameSource creates a source with default settings.
func NewFrameSource(name string) *FrameSource {
	return &FrameSource{
		name: name,
		cfg:  DefaultSourceConfig(),
		log:  logger.WithComponent("units").WithFields(logger.Fields(logger.FieldNode, name)),
	}
}

func (s *FrameSource) Name() string { return s.name }

func (s *FrameSource) Configure(opts dag.Options) error {
	cfg := DefaultSourceConfig()
	if err := decode(opts, &cfg); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

func (s *FrameSource) Initialize() bool {
	s.rewind()
	s.log.Debug("frame source ready", logger.Fields("count", s.cfg.Count, "width", s.cfg.Width, "height", s.cfg.Height))
	return true
}

// Step produces the next frame, failing once Count frames were produced.
func (s *FrameSource) Step() bool {
	if s.rng == nil {
		s.rewind()
	}
	if s.produced >= s.cfg.Count {
		return false
	}

	w, h := s.cfg.Width, s.cfg.Height
	pixels := make([]uint8, w*h)
	for i := range pixels {
		v := backgroundLevel
		if s.cfg.Noise > 0 {
			v += s.rng.IntN(2*s.cfg.Noise+1) - s.cfg.Noise
		}
		pixels[i] = uint8(v)
	}
	if size := s.cfg.Object; size > 0 && size < w && size < h {
		x0, y0 := s.objectOrigin(s.produced)
		for y := y0; y < y0+size; y++ {
			for x := x0; x < x0+size; x++ {
				pixels[y*w+x] = objectLevel
			}
		}
	}

	s.frame = Frame{Index: s.produced, Width: w, Height: h, Pixels: pixels}
	s.produced++
	return true
}

// objectOrigin bounces the square between the frame edges.
func (s *FrameSource) objectOrigin(index int) (int, int) {
	size := s.cfg.Object
	return bounce(index*s.cfg.Speed, s.cfg.Width-size), bounce(index*s.cfg.Speed/2, s.cfg.Height-size)
}

func bounce(pos, span int) int {
	if span <= 0 {
		return 0
	}
	period := 2 * span
	pos %= period
	if pos > span {
		return period - pos
	}
	return pos
}

// Reset rewinds to the first frame with the original seed.
func (s *FrameSource) Reset() bool {
	s.rewind()
	return true
}

func (s *FrameSource) rewind() {
	s.rng = rand.New(rand.NewPCG(s.cfg.Seed, s.cfg.Seed^0x9e3779b97f4a7c15))
	s.produced = 0
	s.frame = Frame{}
}

// Produced returns how many frames were emitted since the last rewind.
func (s *FrameSource) Produced() int { return s.produced }

// FrameOut carries the most recent frame.
func (s *FrameSource) FrameOut() dag.Output[Frame] {
	return dag.NewOutput("frame", func() Frame { return s.frame })
}

func (s *FrameSource) Outputs() []dag.OutputPort { return []dag.OutputPort{s.FrameOut()} }
func (s *FrameSource) Inputs() []dag.InputPort   { return nil }

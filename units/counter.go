package units

import (
	"github.com/kbukum/framegraph/dag"
)

// CounterConfig configures a TrackCounter.
type CounterConfig struct {
	// MinScore drops weaker detections before counting.
	MinScore float64 `mapstructure:"min_score" validate:"gte=0"`
}

// TrackCounter accumulates the number of detections seen across frames.
type TrackCounter struct {
	name string
	cfg  CounterConfig

	detections []Detection
	total      int
	frames     int
	active     int
}

var (
	_ dag.Unit         = (*TrackCounter)(nil)
	_ dag.Resetter     = (*TrackCounter)(nil)
	_ dag.PortProvider = (*TrackCounter)(nil)
)

// NewTrackCounter creates a counter that keeps every detection.
func NewTrackCounter(name string) *TrackCounter {
	return &TrackCounter{name: name}
}

func (c *TrackCounter) Name() string { return c.name }

func (c *TrackCounter) Configure(opts dag.Options) error {
	var cfg CounterConfig
	if err := decode(opts, &cfg); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *TrackCounter) Initialize() bool { return c.Reset() }

func (c *TrackCounter) Step() bool {
	c.active = 0
	for _, d := range c.detections {
		if d.Score >= c.cfg.MinScore {
			c.active++
		}
	}
	c.total += c.active
	c.frames++
	c.detections = nil
	return true
}

// Reset zeroes the counts.
func (c *TrackCounter) Reset() bool {
	c.total, c.frames, c.active = 0, 0, 0
	c.detections = nil
	return true
}

// Total returns the detections counted since the last reset.
func (c *TrackCounter) Total() int { return c.total }

// DetectionsIn receives a frame's detections.
func (c *TrackCounter) DetectionsIn() dag.Input[[]Detection] {
	return dag.NewInput("detections", func(d []Detection) { c.detections = d })
}

// CountOut carries the running total.
func (c *TrackCounter) CountOut() dag.Output[int] {
	return dag.NewOutput("count", func() int { return c.total })
}

// ActiveOut carries the number counted in the most recent frame.
func (c *TrackCounter) ActiveOut() dag.Output[int] {
	return dag.NewOutput("active", func() int { return c.active })
}

func (c *TrackCounter) Outputs() []dag.OutputPort {
	return []dag.OutputPort{c.CountOut(), c.ActiveOut()}
}

func (c *TrackCounter) Inputs() []dag.InputPort {
	return []dag.InputPort{c.DetectionsIn()}
}

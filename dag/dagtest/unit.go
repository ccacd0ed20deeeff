package dagtest

import (
	"sync"

	"github.com/kbukum/framegraph/dag"
)

// Recorder collects unit names in the order their steps ran.
type Recorder struct {
	mu    sync.Mutex
	names []string
}

// Record appends name.
func (r *Recorder) Record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

// Names returns a copy of the recorded names.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// Clear drops everything recorded.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = nil
}

// MockUnit is a configurable dag.Unit. Its output port "out" carries the
// number of the last successful step; its input port "in" records every
// value delivered to it.
type MockUnit struct {
	name string

	mu          sync.Mutex
	script      []bool
	stepFn      func(call int) bool
	panicOn     int
	configErr   error
	initResult  bool
	resetResult bool
	recorder    *Recorder

	calls       int // steps since the last Reset
	steps       int // steps since creation
	configures  int
	inits       int
	resets      int
	lastOptions dag.Options
	value       int
	received    []int
}

var (
	_ dag.Unit         = (*MockUnit)(nil)
	_ dag.Resetter     = (*MockUnit)(nil)
	_ dag.PortProvider = (*MockUnit)(nil)
)

// NewMockUnit creates a unit whose steps succeed.
func NewMockUnit(name string) *MockUnit {
	return &MockUnit{name: name, initResult: true, resetResult: true}
}

// WithResults scripts step outcomes. Once the script runs out the last
// outcome repeats. Reset restarts the script.
func (u *MockUnit) WithResults(results ...bool) *MockUnit {
	u.script = results
	return u
}

// FailAfter succeeds n times, then fails on every later step.
func (u *MockUnit) FailAfter(n int) *MockUnit {
	u.stepFn = func(call int) bool { return call <= n }
	return u
}

// WithStep decides each outcome with fn, which receives the 1-based call
// number since the last Reset.
func (u *MockUnit) WithStep(fn func(call int) bool) *MockUnit {
	u.stepFn = fn
	return u
}

// PanicOn makes the given 1-based call panic.
func (u *MockUnit) PanicOn(call int) *MockUnit {
	u.panicOn = call
	return u
}

// WithConfigError makes Configure fail with err.
func (u *MockUnit) WithConfigError(err error) *MockUnit {
	u.configErr = err
	return u
}

// WithInitResult sets what Initialize returns.
func (u *MockUnit) WithInitResult(ok bool) *MockUnit {
	u.initResult = ok
	return u
}

// WithResetResult sets what Reset returns.
func (u *MockUnit) WithResetResult(ok bool) *MockUnit {
	u.resetResult = ok
	return u
}

// WithRecorder records every step in r.
func (u *MockUnit) WithRecorder(r *Recorder) *MockUnit {
	u.recorder = r
	return u
}

func (u *MockUnit) Name() string { return u.name }

func (u *MockUnit) Configure(opts dag.Options) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.configures++
	u.lastOptions = opts
	return u.configErr
}

func (u *MockUnit) Initialize() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inits++
	return u.initResult
}

func (u *MockUnit) Step() bool {
	u.mu.Lock()
	u.calls++
	u.steps++
	call := u.calls
	rec := u.recorder
	u.mu.Unlock()

	if rec != nil {
		rec.Record(u.name)
	}
	if u.panicOn != 0 && call == u.panicOn {
		panic("dagtest: scripted panic in " + u.name)
	}

	ok := u.outcome(call)

	u.mu.Lock()
	defer u.mu.Unlock()
	if ok {
		u.value = call
	}
	return ok
}

func (u *MockUnit) outcome(call int) bool {
	switch {
	case u.stepFn != nil:
		return u.stepFn(call)
	case len(u.script) == 0:
		return true
	case call <= len(u.script):
		return u.script[call-1]
	default:
		return u.script[len(u.script)-1]
	}
}

// Reset restarts the script and the call count.
func (u *MockUnit) Reset() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.resets++
	u.calls = 0
	return u.resetResult
}

// Out is the unit's output port.
func (u *MockUnit) Out() dag.Output[int] {
	return dag.NewOutput("out", func() int {
		u.mu.Lock()
		defer u.mu.Unlock()
		return u.value
	})
}

// In is the unit's input port.
func (u *MockUnit) In() dag.Input[int] {
	return dag.NewInput("in", func(v int) {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.received = append(u.received, v)
	})
}

func (u *MockUnit) Outputs() []dag.OutputPort { return []dag.OutputPort{u.Out()} }
func (u *MockUnit) Inputs() []dag.InputPort   { return []dag.InputPort{u.In()} }

// Steps returns how many times Step ran since creation.
func (u *MockUnit) Steps() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.steps
}

// Configures returns how many times Configure ran.
func (u *MockUnit) Configures() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.configures
}

// Inits returns how many times Initialize ran.
func (u *MockUnit) Inits() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inits
}

// Resets returns how many times Reset ran.
func (u *MockUnit) Resets() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.resets
}

// LastOptions returns the options of the latest Configure call.
func (u *MockUnit) LastOptions() dag.Options {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastOptions
}

// Received returns a copy of every value delivered to "in".
func (u *MockUnit) Received() []int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]int(nil), u.received...)
}

package resilience

// State represents the breaker state.
type State int

const (
	// StateClosed lets every cycle through.
	StateClosed State = iota
	// StateOpen short-circuits cycles until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets a single probe cycle through.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures failure memory.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the
	// breaker. Zero disables failure memory.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures" validate:"gte=0"`
	// CooldownCycles is how many cycles an open breaker short-circuits
	// before the half-open probe. Zero keeps it open until reset.
	CooldownCycles int `yaml:"cooldown_cycles" mapstructure:"cooldown_cycles" validate:"gte=0"`
	// OnStateChange is called when state changes.
	OnStateChange func(name string, from, to State) `yaml:"-" mapstructure:"-"`
}

// Enabled reports whether the configuration turns failure memory on.
func (c BreakerConfig) Enabled() bool {
	return c.MaxFailures > 0
}

// Breaker is a cycle-counted circuit breaker for one node. It is not safe
// for concurrent use; the scheduler owns it.
type Breaker struct {
	name   string
	config BreakerConfig

	state    State
	failures int
	cooldown int
	trips    int
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, config BreakerConfig) *Breaker {
	return &Breaker{
		name:   name,
		config: config,
		state:  StateClosed,
	}
}

// Allow reports whether the node may step this cycle. An open breaker
// consumes one cooldown cycle per call.
func (b *Breaker) Allow() bool {
	if !b.config.Enabled() {
		return true
	}
	switch b.state {
	case StateOpen:
		if b.config.CooldownCycles == 0 {
			return false
		}
		b.cooldown--
		if b.cooldown > 0 {
			return false
		}
		b.toState(StateHalfOpen)
		return true
	default:
		return true
	}
}

// Record records the outcome of a cycle in which Allow returned true.
func (b *Breaker) Record(success bool) {
	if !b.config.Enabled() {
		return
	}
	if success {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.toState(StateClosed)
		}
		return
	}

	b.failures++
	switch b.state {
	case StateClosed:
		if b.failures >= b.config.MaxFailures {
			b.open()
		}
	case StateHalfOpen:
		b.open()
	}
}

// Reset clears all failure memory.
func (b *Breaker) Reset() {
	b.toState(StateClosed)
	b.failures = 0
	b.cooldown = 0
}

// State returns the current state.
func (b *Breaker) State() State { return b.state }

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int { return b.failures }

// Trips returns how many times the breaker has opened since creation.
func (b *Breaker) Trips() int { return b.trips }

func (b *Breaker) open() {
	b.trips++
	b.cooldown = b.config.CooldownCycles + 1
	b.toState(StateOpen)
}

func (b *Breaker) toState(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.name, from, to)
	}
}

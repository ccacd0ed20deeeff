package dag

// Unit is a processing stage the graph can schedule. The engine calls these
// methods from one goroutine only.
type Unit interface {
	// Name is the display name used in logs and diagnostics.
	Name() string
	// Configure applies parameters. It may be called again between cycles.
	Configure(opts Options) error
	// Initialize prepares the unit once the graph is built.
	Initialize() bool
	// Step processes one cycle and reports success.
	Step() bool
}

// Resetter is implemented by units that hold failure memory of their own.
// Reset operations on the graph call it.
type Resetter interface {
	Reset() bool
}

// PortProvider is implemented by units that can be wired by port name,
// which is how pipeline definitions connect them.
type PortProvider interface {
	Outputs() []OutputPort
	Inputs() []InputPort
}

// FindOutput returns the output port with the given name.
func FindOutput(p PortProvider, name string) (OutputPort, bool) {
	for _, port := range p.Outputs() {
		if port.PortName() == name {
			return port, true
		}
	}
	return nil, false
}

// FindInput returns the input port with the given name.
func FindInput(p PortProvider, name string) (InputPort, bool) {
	for _, port := range p.Inputs() {
		if port.PortName() == name {
			return port, true
		}
	}
	return nil, false
}

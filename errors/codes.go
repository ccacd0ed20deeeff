package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Graph construction errors
const (
	// ErrCodeUnknownNode indicates an operation referenced a node id the graph does not own.
	ErrCodeUnknownNode ErrorCode = "UNKNOWN_NODE"
	// ErrCodeUnknownPort indicates a port name a unit does not declare.
	ErrCodeUnknownPort ErrorCode = "UNKNOWN_PORT"
	// ErrCodeTypeMismatch indicates a connection joined incompatible port types.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeCyclicDependency indicates the execution-dependency subgraph has a cycle.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
)

// Lifecycle errors
const (
	// ErrCodeConfig indicates a unit rejected its parameters.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
	// ErrCodeInitialization indicates a unit failed to initialize or reset.
	ErrCodeInitialization ErrorCode = "INITIALIZATION_FAILED"
)

// Definition errors
const (
	// ErrCodeInvalidPipeline indicates a malformed pipeline definition.
	ErrCodeInvalidPipeline ErrorCode = "INVALID_PIPELINE"
	// ErrCodeComponentNotFound indicates a component name missing from the registry.
	ErrCodeComponentNotFound ErrorCode = "COMPONENT_NOT_FOUND"
	// ErrCodeInvalidInput indicates invalid input such as a bad config value.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates a broken invariant.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var structuralCodes = map[ErrorCode]bool{
	ErrCodeUnknownNode:      true,
	ErrCodeUnknownPort:      true,
	ErrCodeTypeMismatch:     true,
	ErrCodeCyclicDependency: true,
}

// IsStructuralCode reports whether the code describes a graph-structure
// error, the kind that halts pipeline construction.
func IsStructuralCode(code ErrorCode) bool {
	return structuralCodes[code]
}

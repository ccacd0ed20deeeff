package errors

import "fmt"

// details builds a Details map from alternating keys and values.
func details(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

// UnknownNode reports a node id the graph does not own.
func UnknownNode(id string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownNode,
		Message: "node " + id + " is not registered in this graph",
		Details: details("node", id),
	}
}

// UnknownPort reports a port the node does not declare in direction
// ("input" or "output").
func UnknownPort(node, port, direction string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownPort,
		Message: fmt.Sprintf("node %q has no %s port %q", node, direction, port),
		Details: details("node", node, "port", port, "direction", direction),
	}
}

// TypeMismatch reports a connection between ports of incompatible types.
func TypeMismatch(source, sourceType, sink, sinkType string) *AppError {
	return &AppError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("cannot connect %s (%s) to %s (%s)", source, sourceType, sink, sinkType),
		Details: details("source", source, "source_type", sourceType, "sink", sink, "sink_type", sinkType),
	}
}

// CyclicDependency names the edge that closed a cycle.
func CyclicDependency(from, to string) *AppError {
	return &AppError{
		Code:    ErrCodeCyclicDependency,
		Message: fmt.Sprintf("cycle detected between %s and %s", from, to),
		Details: details("from", from, "to", to),
	}
}

// ConfigFailed reports a unit that rejected its parameters.
func ConfigFailed(node string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeConfig,
		Message: fmt.Sprintf("configuring node %q failed", node),
		Details: details("node", node),
		Cause:   cause,
	}
}

// InitializationFailed reports a unit whose initialize or reset hook
// returned false. phase names the hook.
func InitializationFailed(node, phase string) *AppError {
	return &AppError{
		Code:    ErrCodeInitialization,
		Message: fmt.Sprintf("%s of node %q failed", phase, node),
		Details: details("node", node, "phase", phase),
	}
}

func InvalidPipeline(pipeline, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidPipeline,
		Message: fmt.Sprintf("pipeline %q: %s", pipeline, reason),
		Details: details("pipeline", pipeline),
	}
}

func ComponentNotFound(component string) *AppError {
	return &AppError{
		Code:    ErrCodeComponentNotFound,
		Message: fmt.Sprintf("component %q not found in registry", component),
		Details: details("component", component),
	}
}

// InvalidInput reports a bad value. An empty field is left out of Details.
func InvalidInput(field, reason string) *AppError {
	e := &AppError{Code: ErrCodeInvalidInput, Message: "invalid input: " + reason}
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation wraps a joined list of field failures.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal reports a broken invariant.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "an internal invariant was violated", Cause: cause}
}

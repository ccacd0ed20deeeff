package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldService   = "service"
	FieldGraph     = "graph"
	FieldRun       = "run"
	FieldNode      = "node"
	FieldNodeID    = "node_id"
	FieldCycle     = "cycle"
	FieldStatus    = "status"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldPipeline  = "pipeline"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("op", "save", "id", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed. Extra key-value
// pairs are merged in as with Fields.
func ErrorFields(op string, err error, kvs ...interface{}) map[string]interface{} {
	m := Fields(kvs...)
	m[FieldOperation] = op
	if err != nil {
		m[FieldError] = err.Error()
	}
	return m
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  float64(d.Microseconds()) / 1000,
	}
}

// Package errors provides the structured error type used across framegraph.
//
// Every error the engine reports to a caller is an *AppError carrying a
// machine-readable code. Errors compare by code under errors.Is, so callers
// can match a whole class of failures:
//
//	if errors.Is(err, dag.ErrCyclicDependency) { ... }
package errors

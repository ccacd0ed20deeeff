// Package logger provides structured logging for framegraph using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped child loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("dag")
//	log.Info("cycle finished", logger.Fields(logger.FieldCycle, 12, logger.FieldStatus, "success"))
package logger

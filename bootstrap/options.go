package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/framegraph/logger"
)

// Option customizes NewApp.
type Option func(*settings)

type settings struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	summary         io.Writer
}

// WithLogger uses l instead of initializing the global logger from config.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGracefulTimeout bounds shutdown. Non-positive values keep the
// default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.gracefulTimeout = d }
}

// WithSummaryOutput sends the startup summary to w instead of stderr. Nil
// discards it.
func WithSummaryOutput(w io.Writer) Option {
	return func(s *settings) {
		if w == nil {
			w = io.Discard
		}
		s.summary = w
	}
}

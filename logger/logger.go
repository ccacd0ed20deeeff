package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const defaultService = "framegraph"

var levels = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"disabled": zerolog.Disabled,
}

// Logger is a zerolog.Logger that takes its fields as maps.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger tagged with service, writing where cfg.Output says.
func New(cfg *Config, service string) *Logger {
	w := io.Writer(os.Stderr)
	if strings.EqualFold(cfg.Output, "stdout") {
		w = os.Stdout
	}
	return NewWithWriter(cfg, service, w)
}

// NewWithWriter creates a logger writing to w. Unknown levels fall back to
// info.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, ok := levels[strings.ToLower(cfg.Level)]
	if !ok {
		level = zerolog.InfoLevel
	}
	if strings.EqualFold(cfg.Format, FormatConsole) {
		w = newConsoleWriter(w, cfg.NoColor)
	}

	zc := zerolog.New(w).Level(level).With()
	if service != "" {
		zc = zc.Str(FieldService, service)
	}
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{zl: zc.Logger()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithComponent tags the logger with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, name).Logger()}
}

// WithFields returns a logger that adds fields to every event.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// DebugEnabled reports whether debug events would be written, so hot paths
// can skip building field maps.
func (l *Logger) DebugEnabled() bool {
	return l.zl.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) { l.log(zerolog.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]interface{})  { l.log(zerolog.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]interface{})  { l.log(zerolog.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]interface{}) { l.log(zerolog.ErrorLevel, msg, fields) }

func (l *Logger) log(level zerolog.Level, msg string, fields []map[string]interface{}) {
	e := l.zl.WithLevel(level)
	if e == nil {
		return
	}
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}

var global atomic.Pointer[Logger]

// Init replaces the process-wide logger.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	global.Store(New(&cfg, defaultService))
}

// SetGlobalLogger replaces the process-wide logger with l.
func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the process-wide logger. Before Init it is a
// console logger at info level.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	cfg := Config{}
	cfg.ApplyDefaults()
	global.CompareAndSwap(nil, New(&cfg, defaultService))
	return global.Load()
}

// Info logs through the process-wide logger.
func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

// WithComponent returns a component logger derived from the process-wide one.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

// ANSI colors per level tag.
var levelTags = map[string]struct{ tag, color string }{
	zerolog.LevelTraceValue: {"TRC", "36"},
	zerolog.LevelDebugValue: {"DBG", "36"},
	zerolog.LevelInfoValue:  {"INF", "32"},
	zerolog.LevelWarnValue:  {"WRN", "33"},
	zerolog.LevelErrorValue: {"ERR", "31"},
}

func newConsoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "15:04:05.000",
		FormatLevel: func(i interface{}) string {
			lvl, _ := i.(string)
			t, ok := levelTags[lvl]
			if !ok {
				return "[" + strings.ToUpper(lvl) + "]"
			}
			if noColor {
				return "[" + t.tag + "]"
			}
			return "\x1b[" + t.color + "m[" + t.tag + "]\x1b[0m"
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprint(i, ":")
		},
	}
}

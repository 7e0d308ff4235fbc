// Package logger is the zerolog wrapper every schemaroute component logs
// through. Loggers are passed explicitly; there is no package-level
// instance.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger.
type Logger struct {
	zlog zerolog.Logger
}

// Config is the "log" section of the configuration file.
type Config struct {
	Level      string    `koanf:"level"`       // debug, info, warn, error, off
	Format     string    `koanf:"format"`      // json, console
	TimeFormat string    `koanf:"time_format"` // rfc3339, unix, unixms, unixmicro
	Output     io.Writer `koanf:"-"`           // stderr when nil
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: "json", TimeFormat: "rfc3339", Output: os.Stderr}
}

var levels = map[string]zerolog.Level{
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"off":      zerolog.Disabled,
	"disabled": zerolog.Disabled,
}

var timeFormats = map[string]string{
	"unix":      zerolog.TimeFormatUnix,
	"unixms":    zerolog.TimeFormatUnixMs,
	"unixmicro": zerolog.TimeFormatUnixMicro,
}

// New builds a Logger from cfg; nil means DefaultConfig. The time format
// is process-wide in zerolog, so the last New wins.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if f, ok := timeFormats[cfg.TimeFormat]; ok {
		zerolog.TimeFieldFormat = f
	}

	return &Logger{zlog: zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// OrNop returns l, or Nop when l is nil. Constructors taking an optional
// logger call it once.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// ParseLevel maps a level name to a zerolog level; unknown names are info.
func ParseLevel(level string) zerolog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return lvl
	}
	return zerolog.InfoLevel
}

// WithContext returns a copy of ctx carrying l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.zlog.WithContext(ctx)
}

// FromContext returns the logger stored by WithContext, or Nop.
func FromContext(ctx context.Context) *Logger {
	zlog := zerolog.Ctx(ctx)
	if zlog.GetLevel() == zerolog.Disabled {
		return Nop()
	}
	return &Logger{zlog: *zlog}
}

// Context accumulates fields for a child logger.
type Context struct {
	ctx zerolog.Context
}

// With starts a child logger; finish the chain with Logger().
func (l *Logger) With() *Context {
	return &Context{ctx: l.zlog.With()}
}

func (c *Context) Str(key, val string) *Context           { c.ctx = c.ctx.Str(key, val); return c }
func (c *Context) Strs(key string, val []string) *Context { c.ctx = c.ctx.Strs(key, val); return c }
func (c *Context) Int(key string, val int) *Context       { c.ctx = c.ctx.Int(key, val); return c }
func (c *Context) Bool(key string, val bool) *Context     { c.ctx = c.ctx.Bool(key, val); return c }
func (c *Context) Err(err error) *Context                 { c.ctx = c.ctx.Err(err); return c }

func (c *Context) Logger() *Logger {
	return &Logger{zlog: c.ctx.Logger()}
}

func (l *Logger) Debug(msg string)                  { l.zlog.Debug().Msg(msg) }
func (l *Logger) Debugf(format string, args ...any) { l.zlog.Debug().Msgf(format, args...) }
func (l *Logger) Info(msg string)                   { l.zlog.Info().Msg(msg) }
func (l *Logger) Infof(format string, args ...any)  { l.zlog.Info().Msgf(format, args...) }
func (l *Logger) Warn(msg string)                   { l.zlog.Warn().Msg(msg) }
func (l *Logger) Error(msg string)                  { l.zlog.Error().Msg(msg) }

// DebugWith logs msg at debug level with fields attached.
func (l *Logger) DebugWith(msg string, fields map[string]any) {
	withFields(l.zlog.Debug(), fields).Msg(msg)
}

// ErrorWith logs msg at error level with err and fields attached.
func (l *Logger) ErrorWith(msg string, err error, fields map[string]any) {
	withFields(l.zlog.Error().Err(err), fields).Msg(msg)
}

// Request logs one served HTTP request at info level.
func (l *Logger) Request(method, path string, status int, elapsed time.Duration) {
	l.zlog.Info().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("elapsed", elapsed).
		Msg("request")
}

func withFields(e *zerolog.Event, fields map[string]any) *zerolog.Event {
	if len(fields) == 0 {
		return e
	}
	return e.Fields(fields)
}

// Package logging builds the process logger. Diagnostics always go to stderr
// because stdout carries image data.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// New returns a console logger writing to w at the named level
// (debug, info, warn, error). An empty level means DefaultLevel.
func New(level string, w io.Writer) (*zap.Logger, error) {
	if level == "" {
		level = DefaultLevel
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), lvl)
	return zap.New(core).Named("wlshot"), nil
}

// Must is New falling back to DefaultLevel when level is invalid.
func Must(level string, w io.Writer) *zap.Logger {
	l, err := New(level, w)
	if err != nil {
		l, _ = New(DefaultLevel, w)
		l.Warn("invalid log level, using default", zap.String("level", level))
	}
	return l
}

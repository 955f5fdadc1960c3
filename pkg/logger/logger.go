// Package logger provides a zap-based application logger that stamps every
// entry with the service name and, when available, the active trace id.
package logger

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Logger emits.
type Level int8

// Supported levels.
const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a name such as "info" or "WARN" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// TraceIDFn extracts a trace id from a context, returning "" when there is
// none.
type TraceIDFn func(ctx context.Context) string

// Logger writes structured JSON log lines.
type Logger struct {
	z         *zap.SugaredLogger
	traceIDFn TraceIDFn
}

// New constructs a Logger writing JSON to w.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(w), zapcore.Level(minLevel))
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).With(zap.String("service", serviceName))
	return &Logger{z: z.Sugar(), traceIDFn: traceIDFn}
}

// Debug logs at debug level. args are alternating keys and values.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.DebugLevel, msg, args)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.InfoLevel, msg, args)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.WarnLevel, msg, args)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.ErrorLevel, msg, args)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func (l *Logger) write(ctx context.Context, lvl zapcore.Level, msg string, args []any) {
	if l.traceIDFn != nil && ctx != nil {
		if id := l.traceIDFn(ctx); id != "" {
			args = append(args, "trace_id", id)
		}
	}
	switch lvl {
	case zapcore.DebugLevel:
		l.z.Debugw(msg, args...)
	case zapcore.WarnLevel:
		l.z.Warnw(msg, args...)
	case zapcore.ErrorLevel:
		l.z.Errorw(msg, args...)
	default:
		l.z.Infow(msg, args...)
	}
}

// Nop returns a Logger that discards everything, for tests.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

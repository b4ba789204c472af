package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu            sync.RWMutex
	defaultLogger *zap.Logger
)

// Init initializes the global logger. json selects the production encoder.
func Init(level string, json bool) {
	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.OutputPaths = []string{"stdout"}
	cfg.DisableStacktrace = !json

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewExample()
	}
	Set(l)
}

// Set replaces the global logger, tests use it with zaptest/observer.
func Set(l *zap.Logger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Get returns the default logger
func Get() *zap.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		Init("info", false)
		return Get()
	}
	return l
}

func sugar() *zap.SugaredLogger { return Get().Sugar() }

// Info logs at info level. args are alternating keys and values.
func Info(msg string, args ...any) { sugar().Infow(msg, args...) }

func Debug(msg string, args ...any) { sugar().Debugw(msg, args...) }

func Warn(msg string, args ...any) { sugar().Warnw(msg, args...) }

func Error(msg string, args ...any) { sugar().Errorw(msg, args...) }

// Fatal logs at fatal level and exits
func Fatal(msg string, args ...any) {
	sugar().Errorw(msg, args...)
	_ = Get().Sync()
	os.Exit(1)
}

// With returns a logger with the given attributes
func With(args ...any) *zap.SugaredLogger {
	return sugar().With(args...)
}

// Sync flushes buffered entries.
func Sync() { _ = Get().Sync() }

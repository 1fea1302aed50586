// Package log provides the process-wide structured logger.
package log

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

var (
	multiLogger *slog.Logger
	loggerMu    sync.RWMutex
	once        sync.Once
	closers     []func() error
)

// Start initializes the logging package with the given configuration.
// If no configuration is provided, it is derived from the program configuration.
func Start(cfgs ...*Config) error {
	var done = false

	once.Do(func() {
		var cfg *Config
		if len(cfgs) > 0 && cfgs[0] != nil {
			cfg = cfgs[0]
		} else {
			cfg = makeConfig()
		}

		logger, fileClosers := cfg.makeMultiLogger()

		loggerMu.Lock()
		multiLogger = logger
		closers = fileClosers
		loggerMu.Unlock()

		done = true
	})

	if !done {
		return ErrLoggerAlreadyInitialized
	}

	return nil
}

// Stop flushes and closes every destination, the logger can be started again afterwards.
func Stop() {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	for _, closeFn := range closers {
		closeFn()
	}

	closers = nil
	multiLogger = nil
	once = sync.Once{}
}

// Public logging methods
func Debug(msg string, args ...any) {
	logWithLevel(slog.LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	logWithLevel(slog.LevelInfo, msg, args...)
}

func Warn(msg string, args ...any) {
	logWithLevel(slog.LevelWarn, msg, args...)
}

func Error(msg string, args ...any) {
	logWithLevel(slog.LevelError, msg, args...)
}

func logWithLevel(level slog.Level, msg string, args ...any) {
	handle(context.Background(), level, msg, args)
}

// handle emits a record with the caller frame of the public logging function's caller.
func handle(ctx context.Context, level slog.Level, msg string, args []any) {
	loggerMu.RLock()
	defer loggerMu.RUnlock()

	if multiLogger == nil || !multiLogger.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	// skip [runtime.Callers, handle, logWithLevel, public method]
	runtime.Callers(4, pcs[:])

	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(args...)
	multiLogger.Handler().Handle(ctx, record)
}

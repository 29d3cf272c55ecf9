package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger  = zap.NewNop()
	file    *os.File
	mu      sync.Mutex
	enabled bool
)

// DefaultPath returns ~/.config/maestro/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "maestro", "debug.log")
}

// Enable starts debug logging to path (truncated). Until then every call
// goes to a no-op logger, since the terminal belongs to the TUI.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "category",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       func(name string, enc zapcore.PrimitiveArrayEncoder) { enc.AppendString(fmt.Sprintf("%-10s", name)) },
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(f), zapcore.DebugLevel)
	logger = zap.New(core, zap.ErrorOutput(zapcore.AddSync(io.Discard)))
	file = f
	enabled = true

	logger.Named("debug").Info("=== Debug logging started ===")
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	_ = logger.Sync()
	logger = zap.NewNop()
	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// Enabled reports whether a log file is open
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

func current() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	l := current()
	if ce := l.Check(zapcore.DebugLevel, ""); ce == nil {
		return
	}
	l.Named(category).Debug(fmt.Sprintf(format, args...))
	_ = l.Sync() // flush immediately so we see logs even on crash
}

// Warn records a recoverable failure (dropped MIDI message, bad config).
func Warn(category, format string, args ...any) {
	l := current()
	if ce := l.Check(zapcore.WarnLevel, ""); ce == nil {
		return
	}
	l.Named(category).Warn(fmt.Sprintf(format, args...))
	_ = l.Sync()
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n > 0 && count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

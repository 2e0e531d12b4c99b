// Package logging configures structured JSON logging with size-based file
// rotation. CLI runs log to ~/.opskb/logs/opskb.log so stdout stays clean
// for command output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config controls the logger produced by Setup.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// FilePath is the log file location. Empty disables file logging.
	FilePath string
	// MaxSizeMB is the rotation threshold (default 10).
	MaxSizeMB int
	// MaxFiles is how many rotated files to keep (default 5).
	MaxFiles int
	// Stderr also mirrors records to standard error.
	Stderr bool
}

// DefaultConfig returns file-only logging at info level.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		FilePath:  DefaultLogPath(),
		MaxSizeMB: 10,
		MaxFiles:  5,
	}
}

// DefaultLogDir is ~/.opskb/logs, or a temp fallback when the home
// directory cannot be resolved.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".opskb", "logs")
	}
	return filepath.Join(home, ".opskb", "logs")
}

// DefaultLogPath returns the main log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "opskb.log")
}

// Setup builds a JSON slog.Logger per the config and returns it with a
// cleanup function that flushes and closes the log file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	level := ParseLevel(cfg.Level)

	if cfg.FilePath == "" {
		var out io.Writer = io.Discard
		if cfg.Stderr {
			out = os.Stderr
		}
		handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
		return slog.New(handler), func() {}, nil
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = writer
	if cfg.Stderr {
		out = io.MultiWriter(writer, os.Stderr)
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return slog.New(handler), cleanup, nil
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

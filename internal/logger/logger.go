package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the process-wide structured logger. It is usable before Init.
var Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init replaces the default logger. Debug level is enabled by debug or DEBUG=true.
func Init(debug bool) {
	InitWriter(os.Stdout, debug)
}

// InitWriter is Init with an explicit destination; the CLI uses stderr so that
// exports written to stdout stay clean.
func InitWriter(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug || os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(Logger)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

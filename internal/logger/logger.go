// Package logger provides leveled console logging for batch runs.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a config string to a Level, defaulting to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

type leveled struct {
	mu     sync.Mutex
	level  Level
	json   *slog.Logger // set when format is "json"
	logger *log.Logger
}

var std = &leveled{level: InfoLevel, logger: log.New(os.Stderr, "", log.LstdFlags)}

// Init configures the default logger. Format "text" writes prefixed lines
// with the caller's file:line; "json" writes one object per line.
func Init(level, format string) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = ParseLevel(level)
	std.logger = log.New(std.logger.Writer(), "", log.LstdFlags|log.Lshortfile)
	std.json = nil
	if strings.ToLower(format) == "json" {
		std.json = newJSON(std.logger.Writer())
	}
}

func newJSON(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var slogLevels = map[Level]slog.Level{
	DebugLevel: slog.LevelDebug,
	InfoLevel:  slog.LevelInfo,
	WarnLevel:  slog.LevelWarn,
	ErrorLevel: slog.LevelError,
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.logger.SetOutput(w)
	if std.json != nil {
		std.json = newJSON(w)
	}
}

func output(l Level, prefix, format string, args ...interface{}) {
	std.mu.Lock()
	lvl, js, lg := std.level, std.json, std.logger
	std.mu.Unlock()
	if lvl > l {
		return
	}
	if js != nil {
		js.Log(context.Background(), slogLevels[l], fmt.Sprintf(format, args...))
		return
	}
	_ = lg.Output(3, fmt.Sprintf(prefix+format, args...))
}

func Debug(format string, args ...interface{}) { output(DebugLevel, "[DEBUG] ", format, args...) }

func Info(format string, args ...interface{}) { output(InfoLevel, "[INFO] ", format, args...) }

func Warn(format string, args ...interface{}) { output(WarnLevel, "[WARN] ", format, args...) }

func Error(format string, args ...interface{}) { output(ErrorLevel, "[ERROR] ", format, args...) }

package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLogLevel = LevelInfo
	useColors       = true

	fileMu  sync.Mutex
	logFile io.WriteCloser
)

// SetLogLevel sets the minimum log level to display
func SetLogLevel(level LogLevel) {
	currentLogLevel = level
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		currentLogLevel = LevelDebug
	}
}

// SetQuiet enables quiet mode (errors only)
func SetQuiet(quiet bool) {
	if quiet {
		currentLogLevel = LevelError
	}
}

// IsQuiet reports whether only errors are printed
func IsQuiet() bool {
	return currentLogLevel >= LevelError
}

// IsVerbose reports whether debug messages are printed
func IsVerbose() bool {
	return currentLogLevel <= LevelDebug
}

// SetColors enables or disables colored output
func SetColors(enabled bool) {
	useColors = enabled
}

// SetLogFile mirrors every printed line (without colors) into a size-rotated
// log file. An empty path disables the mirror.
func SetLogFile(path string) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	return nil
}

// CloseLogFile flushes and closes the log file mirror, if any
func CloseLogFile() error {
	fileMu.Lock()
	defer fileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func colorize(color string, text string) string {
	if !useColors {
		return text
	}
	reset := "\033[0m"
	return color + text + reset
}

func emit(color, tag, msg string) {
	ts := timestamp()
	fmt.Fprintf(os.Stderr, "%s %s %s\n", colorize(color, ts), tag, msg)

	fileMu.Lock()
	if logFile != nil {
		fmt.Fprintf(logFile, "%s %s %s\n", time.Now().Format(time.RFC3339), tag, msg)
	}
	fileMu.Unlock()
}

// DebugLog logs debug messages
func DebugLog(format string, args ...interface{}) {
	if currentLogLevel <= LevelDebug {
		emit("\033[90m", "[DEBUG]", fmt.Sprintf(format, args...))
	}
}

// InfoLog logs informational messages
func InfoLog(format string, args ...interface{}) {
	if currentLogLevel <= LevelInfo {
		emit("\033[36m", "[INFO] ", fmt.Sprintf(format, args...))
	}
}

// WarnLog logs warning messages
func WarnLog(format string, args ...interface{}) {
	if currentLogLevel <= LevelWarn {
		emit("\033[33m", "[WARN] ", fmt.Sprintf(format, args...))
	}
}

// ErrorLog logs error messages
func ErrorLog(format string, args ...interface{}) {
	if currentLogLevel <= LevelError {
		emit("\033[31m", "[ERROR]", fmt.Sprintf(format, args...))
	}
}

// SuccessLog logs success messages (always shown unless quiet)
func SuccessLog(format string, args ...interface{}) {
	if currentLogLevel <= LevelInfo {
		emit("\033[32m", "[OK]   ", fmt.Sprintf(format, args...))
	}
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()

	// Configure Level
	levelStr := "info"
	if os.Getenv("ARBOR_LOG_LEVEL") != "" {
		levelStr = os.Getenv("ARBOR_LOG_LEVEL")
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("ARBOR_LOG_CALLER") == "true" {
		logger.SetReportCaller(true)
	}

	logger.SetFormatter(&TextFormatter{})

	// Configure Output Sinks
	var writers []io.Writer

	// File sink: .arbor/logs/<component>-<date>.log in the working directory.
	// Logs stay with the project rather than being centralized.
	if logFilePath := defaultLogFilePath(component); logFilePath != "" {
		dir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(dir, 0755); err == nil {
			file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err == nil {
				writers = append(writers, file)
			}
		}
	}

	// Structured logs go to stderr when debugging or when output is not an
	// interactive terminal (piped, CI). Interactive use stays quiet.
	isDebug := os.Getenv("ARBOR_DEBUG") == "1" || logger.GetLevel() == logrus.DebugLevel
	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if isDebug || !isInteractive {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

func defaultLogFilePath(component string) string {
	dateStr := time.Now().Format("2006-01-02")
	name := fmt.Sprintf("%s-%s.log", component, dateStr)

	cwd, err := os.Getwd()
	if err == nil {
		return filepath.Join(cwd, ".arbor", "logs", name)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".arbor", "logs", name)
	}

	return ""
}

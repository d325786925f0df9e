package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const logDirEnvVar = "TONIFY_LOG_DIR"

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Category selects which log file a logger writes to.
type Category string

const (
	CategoryService Category = "service"
	CategoryOracle  Category = "oracle"
	CategoryStore   Category = "store"
)

var (
	categoryMu      sync.Mutex
	categoryLoggers = make(map[Category]*fileLogger)
)

// fileLogger writes formatted lines to a per-category log file.
type fileLogger struct {
	file      *os.File
	logger    *log.Logger
	level     Level
	mu        sync.Mutex
	component string
	category  Category
}

// NewComponentLogger returns a logger for a component, writing to the service log.
func NewComponentLogger(component string) Logger {
	return NewCategorizedLogger(CategoryService, component)
}

// NewOracleLogger returns a logger that writes to the dedicated oracle log file
// (tonify-oracle.log).
func NewOracleLogger(component string) Logger {
	return NewCategorizedLogger(CategoryOracle, component)
}

// NewCategorizedLogger returns a logger for a specific category and component.
func NewCategorizedLogger(category Category, component string) Logger {
	base := getOrCreateCategoryLogger(category)
	return &fileLogger{
		file:      base.file,
		logger:    base.logger,
		level:     base.level,
		component: component,
		category:  category,
	}
}

func getOrCreateCategoryLogger(category Category) *fileLogger {
	categoryMu.Lock()
	defer categoryMu.Unlock()

	if logger, ok := categoryLoggers[category]; ok {
		return logger
	}

	logger := newFileLogger(category)
	categoryLoggers[category] = logger
	return logger
}

func newFileLogger(category Category) *fileLogger {
	l := &fileLogger{
		level:    LevelDebug,
		category: category,
	}

	logDir, err := resolveLogDirectory()
	if err != nil {
		log.Printf("Failed to resolve log directory: %v", err)
		return l
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("Failed to create log directory %s: %v", logDir, err)
		return l
	}

	logPath := filepath.Join(logDir, logFileName(category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Failed to open log file: %v", err)
		return l
	}

	l.file = file
	l.logger = log.New(file, "", 0) // formatted by log()
	return l
}

func resolveLogDirectory() (string, error) {
	if override := strings.TrimSpace(os.Getenv(logDirEnvVar)); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home, nil
}

func logFileName(category Category) string {
	switch category {
	case CategoryOracle:
		return "tonify-oracle.log"
	case CategoryStore:
		return "tonify-store.log"
	default:
		return "tonify-service.log"
	}
}

func (l *fileLogger) log(level Level, format string, args ...any) {
	if level < l.level || l.logger == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	} else {
		file = "???"
		line = 0
	}

	// Format: 2026-08-28 12:34:56 [INFO] [ORACLE] [ComponentName] file.go:123 - Message
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	component := l.component
	if component == "" {
		component = "TONIFY"
	}
	category := strings.ToUpper(string(l.category))

	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%s [%s] [%s] [%s] %s:%d - %s",
		timestamp, levelToString(level), category, component, file, line, message)
}

func (l *fileLogger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *fileLogger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *fileLogger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *fileLogger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

func levelToString(level Level) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the logging level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var zapLevels = map[Level]zapcore.Level{
	DEBUG: zapcore.DebugLevel,
	INFO:  zapcore.InfoLevel,
	WARN:  zapcore.WarnLevel,
	ERROR: zapcore.ErrorLevel,
	FATAL: zapcore.FatalLevel,
}

// Logger is the main logger instance.
type Logger struct {
	mu          sync.Mutex
	level       zap.AtomicLevel
	output      io.Writer
	colorEnable bool
	sugar       *zap.SugaredLogger
	logFile     *os.File
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func newLogger(level Level, w io.Writer, color bool) *Logger {
	l := &Logger{
		level:       zap.NewAtomicLevelAt(zapLevels[level]),
		output:      w,
		colorEnable: color,
	}
	l.rebuild()
	return l
}

// rebuild recreates the zap core after the output or color setting changed.
// Callers hold l.mu, except during construction.
func (l *Logger) rebuild() {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	if l.colorEnable {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(l.output), l.level)
	l.sugar = zap.New(core).Sugar()
}

// Init initializes the default logger with the specified level.
func Init(levelStr string) {
	once.Do(func() {
		defaultLogger = newLogger(parseLevel(levelStr), os.Stdout, true)
	})
}

// InitWithFile initializes the default logger to write into a timestamped
// file under dir. Color is disabled for file output.
func InitWithFile(levelStr, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	name := fmt.Sprintf("covguard_%s.log", time.Now().Format("20060102_150405"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	Init(levelStr)
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level.SetLevel(zapLevels[parseLevel(levelStr)])
	defaultLogger.logFile = f
	defaultLogger.output = f
	defaultLogger.colorEnable = false
	defaultLogger.rebuild()
	return nil
}

// GetLogFilePath returns the path of the current log file, or "" when
// logging to a stream.
func GetLogFilePath() string {
	if defaultLogger == nil {
		return ""
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	if defaultLogger.logFile == nil {
		return ""
	}
	return defaultLogger.logFile.Name()
}

// Close flushes the logger and closes the log file, if any.
func Close() {
	if defaultLogger == nil {
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	_ = defaultLogger.sugar.Sync()
	if defaultLogger.logFile != nil {
		_ = defaultLogger.logFile.Close()
		defaultLogger.logFile = nil
		defaultLogger.output = os.Stdout
		defaultLogger.rebuild()
	}
}

// SetLevel sets the logging level for the default logger.
func SetLevel(levelStr string) {
	if defaultLogger == nil {
		Init(levelStr)
		return
	}
	defaultLogger.level.SetLevel(zapLevels[parseLevel(levelStr)])
}

// SetOutput sets the output destination for the default logger.
func SetOutput(w io.Writer) {
	if defaultLogger == nil {
		Init("info")
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.output = w
	defaultLogger.rebuild()
}

// SetColorEnable enables or disables color output.
func SetColorEnable(enable bool) {
	if defaultLogger == nil {
		Init("info")
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.colorEnable = enable
	defaultLogger.rebuild()
}

// parseLevel converts a string to a Level.
func parseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	s := l.sugar
	l.mu.Unlock()

	switch level {
	case DEBUG:
		s.Debugf(format, args...)
	case INFO:
		s.Infof(format, args...)
	case WARN:
		s.Warnf(format, args...)
	case ERROR:
		s.Errorf(format, args...)
	case FATAL:
		// zap exits the process after writing
		s.Fatalf(format, args...)
	}
}

func std() *Logger {
	if defaultLogger == nil {
		Init("info")
	}
	return defaultLogger
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	std().log(DEBUG, format, args...)
}

// Debugf is an alias for Debug.
func Debugf(format string, args ...interface{}) {
	Debug(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	std().log(INFO, format, args...)
}

// Infof is an alias for Info.
func Infof(format string, args ...interface{}) {
	Info(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	std().log(WARN, format, args...)
}

// Warnf is an alias for Warn.
func Warnf(format string, args ...interface{}) {
	Warn(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	std().log(ERROR, format, args...)
}

// Errorf is an alias for Error.
func Errorf(format string, args ...interface{}) {
	Error(format, args...)
}

// Fatal logs a fatal message and exits the program.
func Fatal(format string, args ...interface{}) {
	std().log(FATAL, format, args...)
}

// Fatalf is an alias for Fatal.
func Fatalf(format string, args ...interface{}) {
	Fatal(format, args...)
}

// Sink forwards diagnostics to the default logger.
type Sink struct{}

// Diagnostics returns a sink writing to the default logger.
func Diagnostics() Sink {
	return Sink{}
}

func (Sink) Debugf(format string, args ...interface{}) { Debug(format, args...) }
func (Sink) Warnf(format string, args ...interface{})  { Warn(format, args...) }

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	log *zap.SugaredLogger
	// logFile is the file core's handle, closed when the logger is swapped
	logFile *os.File
)

// Options controls where and how much the logger writes
type Options struct {
	Level    string
	ToFile   bool
	FilePath string
	// Account fills the {account} token of FilePath
	Account string
}

// Init initializes the logger with the specified configuration
func Init(opts Options) error {
	var cores []zapcore.Core

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	zapLevel, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Console output (always enabled)
	cores = append(cores, zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	))

	var file *os.File
	if opts.ToFile {
		filePath := ResolvePath(opts.FilePath, opts.Account, time.Now())

		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err = os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(file),
			zapLevel,
		))
	}

	swap(zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)), file)
	return nil
}

// ResolvePath expands the {account} and {date} tokens of a log file path
func ResolvePath(path, account string, now time.Time) string {
	if account == "" {
		account = "default"
	}
	path = strings.ReplaceAll(path, "{account}", account)
	return strings.ReplaceAll(path, "{date}", now.Format("20060102"))
}

// Replace swaps the global logger, flushing the one it replaces and
// closing its log file. Init calls it again whenever the run switches
// accounts.
func Replace(l *zap.Logger) {
	swap(l, nil)
}

func swap(l *zap.Logger, file *os.File) {
	if log != nil {
		_ = log.Sync()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	log = l.Sugar()
	logFile = file
}

// Get returns the global logger instance
func Get() *zap.SugaredLogger {
	if log == nil {
		// Fallback to default logger if not initialized
		defaultLogger, _ := zap.NewProduction()
		log = defaultLogger.Sugar()
	}
	return log
}

// Debug logs a debug message
func Debug(msg string, keysAndValues ...interface{}) {
	Get().Debugw(msg, keysAndValues...)
}

// Info logs an info message
func Info(msg string, keysAndValues ...interface{}) {
	Get().Infow(msg, keysAndValues...)
}

// Warn logs a warning message
func Warn(msg string, keysAndValues ...interface{}) {
	Get().Warnw(msg, keysAndValues...)
}

// Error logs an error message
func Error(msg string, keysAndValues ...interface{}) {
	Get().Errorw(msg, keysAndValues...)
}

// Sync flushes any buffered log entries
func Sync() error {
	if log != nil {
		return log.Sync()
	}
	return nil
}

// With returns a child logger carrying fields on every entry
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return Get().With(keysAndValues...)
}

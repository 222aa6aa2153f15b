package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"alarm_gateway/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instances
	base    *zap.Logger
	sugar   *zap.SugaredLogger
	logFile *os.File
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// LogLevel constants
const (
	DEBUG = "debug"
	INFO  = "info"
	WARN  = "warn"
	ERROR = "error"
)

func init() {
	// Usable before Init: console only
	base = zap.New(zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stdout), level))
	sugar = base.Sugar()
}

func consoleEncoder() zapcore.Encoder {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(enc)
}

func fileEncoder() zapcore.Encoder {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(enc)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes the logging system using configuration
func Init(cfg *config.Config) error {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	level.SetLevel(parseLevel(cfg.Logging.LogLevel))

	logPath := cfg.Logging.LogFile
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(cwd, logPath)
	}

	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(fileEncoder(), zapcore.AddSync(logFile), level),
	}
	if cfg.Logging.LogToConsole {
		cores = append(cores, zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stdout), level))
	}

	base = zap.New(zapcore.NewTee(cores...))
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		base = base.With(zap.String("hostname", hostname))
	}
	sugar = base.Sugar()

	// Log session start
	sugar.Infof("=== Session started at %s ===", time.Now().Format("2006-01-02 15:04:05"))
	sugar.Infow("logging configured",
		"log_file", logPath,
		"log_level", level.Level().String(),
		"log_to_console", cfg.Logging.LogToConsole,
	)
	LogDivider()

	return nil
}

// Close flushes and closes the log file
func Close() error {
	if logFile == nil {
		return nil
	}
	LogDivider()
	sugar.Infof("=== Session ended at %s ===", time.Now().Format("2006-01-02 15:04:05"))
	_ = base.Sync()
	err := logFile.Close()
	logFile = nil
	return err
}

// L returns the structured logger for callers that want fields.
func L() *zap.Logger {
	return base
}

// SetLogger replaces the global logger. Tests use it to observe output.
func SetLogger(l *zap.Logger) {
	base = l
	sugar = l.Sugar()
}

func trim(s string) string {
	return strings.TrimRight(s, "\n")
}

// Printf prints formatted text to log at info level
func Printf(format string, v ...interface{}) {
	sugar.Info(trim(fmt.Sprintf(format, v...)))
}

// Println prints a line to log at info level
func Println(v ...interface{}) {
	sugar.Info(trim(fmt.Sprintln(v...)))
}

// Debugf prints formatted debug text
func Debugf(format string, v ...interface{}) {
	sugar.Debug(trim(fmt.Sprintf(format, v...)))
}

// Warnf prints formatted warning text
func Warnf(format string, v ...interface{}) {
	sugar.Warn(trim(fmt.Sprintf(format, v...)))
}

// Errorf prints formatted error text
func Errorf(format string, v ...interface{}) {
	sugar.Error(trim(fmt.Sprintf(format, v...)))
}

// Fatalf prints formatted fatal error and exits
func Fatalf(format string, v ...interface{}) {
	sugar.Error(trim(fmt.Sprintf(format, v...)))
	Close()
	os.Exit(1)
}

// LogDivider prints a divider line for better log organization
func LogDivider() {
	Println("------------------------------------------------------------")
}

// LogResult logs a result with status
func LogResult(operation string, success bool, details string) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	if details != "" {
		Printf("%s: %s - %s", operation, status, details)
		return
	}
	Printf("%s: %s", operation, status)
}

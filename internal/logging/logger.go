package logging

import (
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"
)

// levelSwitch controls the minimum level of every logger, including the
// package level component loggers created at init.
var levelSwitch = mtlog.NewLoggingLevelSwitch(core.InformationLevel)

// Logger exposes the default application logger configured for console output.
var Logger = mtlog.New(
	mtlog.WithConsole(),
	mtlog.WithLevelSwitch(levelSwitch),
)

// ForComponent returns a logger enriched with a static component name.
func ForComponent(name string) core.Logger {
	return Logger.With("component", name)
}

// SetLevel changes the minimum level at runtime. An empty level means info.
func SetLevel(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}
	levelSwitch.SetLevel(parsed)
	return nil
}

func ParseLevel(level string) (core.LogEventLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return core.DebugLevel, nil
	case "", "info", "information":
		return core.InformationLevel, nil
	case "warn", "warning":
		return core.WarningLevel, nil
	case "error":
		return core.ErrorLevel, nil
	}
	return core.InformationLevel, errors.Errorf("unknown log level %q", level)
}

// Info logs at information level using mtlog message templates.
func Info(logger core.Logger, template string, args ...any) {
	logger.Info(template, args...)
}

// Debug logs at debug level using mtlog message templates.
func Debug(logger core.Logger, template string, args ...any) {
	logger.Debug(template, args...)
}

// Warn logs at warning level using mtlog message templates.
func Warn(logger core.Logger, template string, args ...any) {
	logger.Warn(template, args...)
}

// Error logs at error level using mtlog message templates.
func Error(logger core.Logger, template string, args ...any) {
	logger.Error(template, args...)
}

// Fatal logs a message template and terminates the process.
func Fatal(logger core.Logger, template string, args ...any) {
	logger.Error(template, args...)
	os.Exit(1)
}

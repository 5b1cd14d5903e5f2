package contract

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It writes to stderr so that stdout
// stays reserved for results and the MCP transport.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// SetLogLevel sets the level of the process-wide logger.
func SetLogLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Logger.SetLevel(lvl)
	return nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.WithError(err).Warn(msg)
}

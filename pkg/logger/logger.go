package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = newLogger()

func newLogger() *logrus.Logger {
	log := logrus.New()
	// stdout belongs to the live sink
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:      true,
		DisableTimestamp: true,
	})
	log.SetLevel(levelFromEnv())
	return log
}

func levelFromEnv() logrus.Level {
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		return lvl
	}
	if IsDebug() {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// IsDebug reports whether DEBUG=1 is set.
func IsDebug() bool {
	return os.Getenv("DEBUG") == "1"
}

// Quiet raises the level to Warn unless debugging was requested.
// Used while a live sink is drawing on the terminal.
func Quiet() {
	if IsDebug() || os.Getenv("LOG_LEVEL") != "" {
		return
	}
	Log.SetLevel(logrus.WarnLevel)
}

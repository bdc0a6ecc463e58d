package logger

import (
	"github.com/sirupsen/logrus"
)

var projectLogger *logrus.Logger

// GetProjectLogger returns the shared project logger, creating it on
// first use.
func GetProjectLogger() *logrus.Logger {
	if nil == projectLogger {
		projectLogger = logrus.New()
		projectLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return projectLogger
}

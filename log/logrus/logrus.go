// Package logrus adapts a logrus.Entry to the distribucache Logger
// interface.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/areusjs/distribucache"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ distribucache.Logger = LogrusLogger{}

func (l LogrusLogger) Debug(msg string, f distribucache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f distribucache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Info(msg)
}
func (l LogrusLogger) Warn(msg string, f distribucache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Warn(msg)
}
func (l LogrusLogger) Error(msg string, f distribucache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}

// Package simlog is a thin wrapper around logrus shared by every
// manager in the core. The host app may inject its own *logrus.Logger
// (core.Config.Logger); callers that don't care get a sane default.
package simlog

import "github.com/sirupsen/logrus"

// Default returns a logrus.Logger configured the way the core expects
// when the host app hasn't supplied its own: text formatter, Info
// level, timestamps on.
func Default() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Or returns l if non-nil, otherwise a fresh Default().
func Or(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	return Default()
}

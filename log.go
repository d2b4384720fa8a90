// Copyright 2017 Psiphon Inc.
// Use of this source code is governed by the GNU General Public
// License; see the LICENSE file distributed with this package.

package ssh

import "github.com/sirupsen/logrus"

// Logger exposes a logging interface whose LogFields type is
// field-for-field compatible with logrus.Fields, so fields convert
// directly; a host's *logrus.Logger is adapted with NewLogrusLogger.
// Adapted from psiphon/common.Logger.
type Logger interface {
	WithTrace() LogTrace
	WithTraceFields(fields LogFields) LogTrace
}

// LogTrace is the leveled logging surface returned by Logger.
type LogTrace interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
}

// LogFields is type-compatible with logrus.Fields.
type LogFields map[string]interface{}

// NewLogrusLogger adapts a *logrus.Logger to the Logger interface.
func NewLogrusLogger(l *logrus.Logger) Logger {
	return logrusLogger{l}
}

type logrusLogger struct {
	l *logrus.Logger
}

func (l logrusLogger) WithTrace() LogTrace {
	return logrusEntry{l.l.WithField("component", "ssh")}
}

func (l logrusLogger) WithTraceFields(fields LogFields) LogTrace {
	return logrusEntry{l.l.WithFields(logrus.Fields(fields)).WithField("component", "ssh")}
}

type logrusEntry struct {
	e *logrus.Entry
}

func (e logrusEntry) Debug(args ...interface{}) { e.e.Debug(args...) }
func (e logrusEntry) Info(args ...interface{})  { e.e.Info(args...) }
func (e logrusEntry) Warn(args ...interface{})  { e.e.Warn(args...) }
func (e logrusEntry) Error(args ...interface{}) { e.e.Error(args...) }

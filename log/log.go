// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log defines the logger interface used across embeddeddeps. By default
// it logs through logrus, but it can be replaced with user-defined loggers.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface used by all packages of the module.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

var logger Logger = NewDefaultLogger(os.Stderr, false)

// SetLogger overwrites the default logger with a user specified one.
func SetLogger(l Logger) { logger = l }

// Errorf is the static formatted error logging function.
func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}

// Warnf is the static formatted warning logging function.
func Warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}

// Infof is the static formatted info logging function.
func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

// Debugf is the static formatted debug logging function.
func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

// DefaultLogger is the Logger implementation used by default. It writes
// timestamped text lines through a dedicated logrus instance.
type DefaultLogger struct {
	l *logrus.Logger
}

// NewDefaultLogger returns a logrus-backed logger writing to w. Debug lines are
// only shown if verbose is set.
func NewDefaultLogger(w io.Writer, verbose bool) *DefaultLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &DefaultLogger{l: l}
}

// Errorf is the formatted error logging function.
func (d *DefaultLogger) Errorf(format string, args ...any) { d.l.Errorf(format, args...) }

// Warnf is the formatted warning logging function.
func (d *DefaultLogger) Warnf(format string, args ...any) { d.l.Warnf(format, args...) }

// Infof is the formatted info logging function.
func (d *DefaultLogger) Infof(format string, args ...any) { d.l.Infof(format, args...) }

// Debugf is the formatted debug logging function.
func (d *DefaultLogger) Debugf(format string, args ...any) { d.l.Debugf(format, args...) }

// Copyright (c) 2023-2026, KNS Group LLC ("YADRO").
// All Rights Reserved.
// This software contains the intellectual property of YADRO
// or is licensed to YADRO from third parties. Use of this
// software and the intellectual property contained therein is expressly
// limited to the terms and conditions of the License Agreement under which
// it is provided by YADRO.
//

package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is what components accept; both *logrus.Logger and *logrus.Entry fit.
type Logger = logrus.FieldLogger

// Fields represents structured logging fields
type Fields = logrus.Fields

func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger creates a JSON logger at the given level.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// NewLoggerWithService tags every entry with the service name.
func NewLoggerWithService(serviceName, level string) *logrus.Entry {
	return NewLogger(level).WithField("service", serviceName)
}

// Discard is a logger for tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
// Each context carries labels (run id, project directory, slot) that
// are attached to the log entries made with it.
//
// Entries are Cloud Logging entries written locally through glog.
package clog

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/logging"
	"github.com/golang/glog"
)

type contextKeyType int

var contextKey contextKeyType

// DefaultFormatter formats the payload prefixed with the sorted labels.
func DefaultFormatter(e logging.Entry) string {
	if len(e.Labels) == 0 {
		return fmt.Sprintf("%v", e.Payload)
	}
	keys := make([]string, 0, len(e.Labels))
	for k := range e.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%s", k, e.Labels[k])
	}
	fmt.Fprintf(&sb, "] %v", e.Payload)
	return sb.String()
}

var defaultLogger = &Logger{Formatter: DefaultFormatter}

// New creates a new Logger with the trace id.
func New(trace string) *Logger {
	return &Logger{
		Formatter: DefaultFormatter,
		trace:     trace,
	}
}

// NewContext sets the given logger to the context.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// WithLabels returns a context whose logger has labels added to the
// labels of the logger in ctx.
func WithLabels(ctx context.Context, labels map[string]string) context.Context {
	return NewContext(ctx, FromContext(ctx).With(labels))
}

// FromContext returns the logger in the context, or the default logger
// if it's not set.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey).(*Logger)
	if !ok {
		return defaultLogger
	}
	return logger
}

// Logger holds the trace and labels of the context.
type Logger struct {
	// Formatter is a formatter of the entry for glog.
	Formatter func(e logging.Entry) string

	// Sink, if set, receives every entry in addition to glog.
	Sink func(e logging.Entry)

	trace  string
	labels map[string]string
}

// With returns a sub logger with labels added.
func (l *Logger) With(labels map[string]string) *Logger {
	merged := maps.Clone(l.labels)
	if merged == nil {
		merged = make(map[string]string, len(labels))
	}
	maps.Copy(merged, labels)
	return &Logger{
		Formatter: l.Formatter,
		Sink:      l.Sink,
		trace:     l.trace,
		labels:    merged,
	}
}

// Trace returns the trace id of the logger.
func (l *Logger) Trace() string {
	return l.trace
}

// Labels returns a copy of the labels of the logger.
func (l *Logger) Labels() map[string]string {
	return maps.Clone(l.labels)
}

func (l *Logger) log(e logging.Entry) {
	if l.Sink != nil {
		l.Sink(e)
	}
	msg := l.Formatter(e)
	switch e.Severity {
	case logging.Info:
		glog.InfoDepth(2, msg)
	case logging.Warning:
		glog.WarningDepth(2, msg)
	case logging.Error:
		glog.ErrorDepth(2, msg)
	default:
		glog.InfoDepth(2, fmt.Sprintf("%s %s", e.Severity, msg))
	}
}

// Infof logs at info log level with the logger of ctx.
func Infof(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Info, fmt.Sprintf(format, args...)))
}

// Warningf logs at warning log level with the logger of ctx.
func Warningf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Warning, fmt.Sprintf(format, args...)))
}

// Errorf logs at error log level with the logger of ctx.
func Errorf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Error, fmt.Sprintf(format, args...)))
}

// Entry creates a new log entry for the given severity.
func (l *Logger) Entry(severity logging.Severity, payload any) logging.Entry {
	return logging.Entry{
		Timestamp: time.Now(),
		Severity:  severity,
		Payload:   payload,
		Labels:    maps.Clone(l.labels),
		Trace:     l.trace,
	}
}

// Close flushes log entries.
func (l *Logger) Close() {
	glog.Flush()
}

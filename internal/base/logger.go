// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger is a thin logging interface, the same role the teacher's
// base.LoggerAndTracer plays: a seam so the core can log tolerated
// failures (a skipped file, a discarded trailing batch byte) without
// pulling in a concrete logging backend. The teacher wraps stdlib log;
// no third-party logging library appears anywhere in the retrieval pack,
// so the default implementation here wraps log/slog, stdlib's structured
// successor.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct {
	l *slog.Logger
}

// NewLogger returns the default Logger, backed by slog.Default() (or l, if
// non-nil).
func NewLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

func (s slogLogger) Warnf(format string, args ...interface{}) {
	s.l.Log(context.Background(), slog.LevelWarn, fmt.Sprintf(format, args...))
}

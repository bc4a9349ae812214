// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logRotator rotates the daemon's log file; it's nil until initLogRotator
// runs, exactly like the teacher's lazily-initialized backend writer.
var logRotator *rotator.Rotator

// backendLog is the slog backend everything in this process logs through.
var backendLog = slog.NewBackend(logWriter{})

// subsystem loggers, one per subsystem. Created up front and used directly
// by main and runMiner, matching the teacher's per-subsystem logger map (dagLog, mnLog, dbLog here instead of the
// teacher's peer/mempool/rpc set, since those subsystems don't exist here).
var (
	dagLog = backendLog.Logger("DAG")
	mnLog  = backendLog.Logger("MINR")
	dbLog  = backendLog.Logger("DB")
)

// logWriter implements io.Writer and writes to both standard output and
// the log rotator, if it has been initialized.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator initializes the logging rotator to write logs to logFile
// and create roll files in the same directory. It must be called before
// the package-level log rotator variable is used, since it is initialized
// by this function.
func initLogRotator(logFile string) error {
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

// setLogLevels sets the logging level for every subsystem logger. A given
// level from slog's well-known set (trace, debug, info, warn, error,
// critical, off) applies uniformly; per-subsystem overrides aren't exposed
// since duskd, unlike the teacher, has only a handful of subsystems.
func setLogLevels(levelStr string) error {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return errInvalidLogLevel(levelStr)
	}
	for _, l := range []slog.Logger{dagLog, mnLog, dbLog} {
		l.SetLevel(level)
	}
	return nil
}

type errInvalidLogLevel string

func (e errInvalidLogLevel) Error() string {
	return "invalid log level: " + string(e)
}

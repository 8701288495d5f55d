/*
DESCRIPTION
  fitlog.go provides a rolling log file for calibration fit runs, with
  archiving of the rotated files so each run's log can be kept alongside its
  calibration results.

AUTHORS
  Jack Richardson <richardson.jack@outlook.com>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses.
*/

// Package fitlog provides a rolling log for calibration fit runs.
package fitlog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file configuration.
const (
	logName      = "domcal.log"
	logBackups   = "domcal-*.log" // Names given to rotated files.
	archiveDir   = "archive"
	logMaxSize   = 500 // MB.
	logMaxBackup = 10
	logMaxAge    = 28 // Days.
)

// Logger is a rolling log file in a directory.
type Logger struct {
	dir       string
	LogRoller lumberjack.Logger
	keepLogs  bool
}

// New returns a Logger writing to domcal.log in dir.
func New(dir string) *Logger {
	return &Logger{
		dir: dir,
		LogRoller: lumberjack.Logger{
			Filename:   filepath.Join(dir, logName),
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		},
	}
}

// Write implements io.Writer.
func (l *Logger) Write(p []byte) (int, error) { return l.LogRoller.Write(p) }

// Rotate closes the current log file and dates it, followed by opening a new
// log file.
func (l *Logger) Rotate() error {
	return l.LogRoller.Rotate()
}

// Close closes the current log file.
func (l *Logger) Close() error { return l.LogRoller.Close() }

// SetKeepLogs sets whether Archive keeps rotated logs in the archive
// directory or deletes them.
func (l *Logger) SetKeepLogs(keep bool) {
	l.keepLogs = keep
}

// Archive moves every rotated log file into the archive directory, or
// deletes them if logs are not kept, and returns the paths of the archived
// files. A call to Archive should be preceded by a call to Rotate if the most
// recent log messages are to be archived.
func (l *Logger) Archive() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.dir, logBackups))
	if err != nil {
		return nil, fmt.Errorf("could not glob rotated logs: %w", err)
	}

	if !l.keepLogs {
		for _, f := range files {
			if err := os.Remove(f); err != nil {
				return nil, fmt.Errorf("could not delete log file %s: %w", filepath.Base(f), err)
			}
		}
		return nil, nil
	}

	dst := filepath.Join(l.dir, archiveDir)
	if err := os.MkdirAll(dst, os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not create archive directory: %w", err)
	}
	var archived []string
	for _, f := range files {
		to := filepath.Join(dst, filepath.Base(f))
		if err := os.Rename(f, to); err != nil {
			return archived, fmt.Errorf("could not move log file %s: %w", filepath.Base(f), err)
		}
		archived = append(archived, to)
	}
	return archived, nil
}

// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides the syncmv run log: timestamped, leveled lines written
// to a log file, mirrored into zerolog for structured console output.
package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// 🕐 timestampLayout is the layout for log line timestamps
const timestampLayout = "2006-01-02 15:04:05"

// 📊 Level identifies the severity of a run log line
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelPoll
)

// String returns the level tag as it appears in the log file
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelPoll:
		return "POLL"
	default:
		return "INFO"
	}
}

// 📋 PollRecord captures one sync status observation for the run log
type PollRecord struct {
	RawStatus  string        // Status string as returned by the oracle
	Blank      bool          // Classified blank (empty result or probe failure)
	InProgress bool          // Classified in progress
	Done       bool          // Classified done
	Stable     int           // Consecutive done observations so far
	Required   int           // Consecutive done observations required
	Dest       string        // Destination path being polled
	Elapsed    time.Duration // Total process run time at the observation
}

// 🎯 Logger writes `[<timestamp>][<LEVEL>] <message>` lines to the run log
// and mirrors each line into zerolog
type Logger struct {
	zlog zerolog.Logger
	file io.Writer
	mu   sync.Mutex
	now  func() time.Time
}

// 🏭 New creates a run logger. file may be nil to disable file output.
func New(file io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog: zlog,
		file: file,
		now:  time.Now,
	}
}

// 📝 write emits one formatted line to the log file
func (l *Logger) write(level Level, msg string) {
	if l.file == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.file, "[%s][%s] %s\n", l.now().Format(timestampLayout), level, msg)
}

// 📝 Infof logs an info message
func (l *Logger) Infof(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.write(LevelInfo, msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Warnf logs a warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.write(LevelWarn, msg)
	l.zlog.Warn().Msg(msg)
}

// 📝 Errorf logs an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.write(LevelError, msg)
	l.zlog.Error().Msg(msg)
}

// 📝 Poll logs one poll observation at POLL level
func (l *Logger) Poll(rec PollRecord) {
	msg := fmt.Sprintf("status=%q blank=%t in_progress=%t done=%t stable=%d/%d elapsed=%s dest=%s",
		rec.RawStatus, rec.Blank, rec.InProgress, rec.Done,
		rec.Stable, rec.Required, rec.Elapsed.Round(time.Second), rec.Dest)
	l.write(LevelPoll, msg)
	l.zlog.Debug().
		Str("level", "POLL").
		Str("status", rec.RawStatus).
		Bool("blank", rec.Blank).
		Bool("in_progress", rec.InProgress).
		Bool("done", rec.Done).
		Int("stable", rec.Stable).
		Int("required", rec.Required).
		Str("dest", rec.Dest).
		Dur("elapsed", rec.Elapsed).
		Msg("poll observation")
}

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

package transfer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncmv/pkg/log"
	"github.com/walteh/syncmv/pkg/monitor"
	"github.com/walteh/syncmv/pkg/prune"
)

// 🏁 Outcome is the terminal state of one file's pipeline
type Outcome int

const (
	OutcomeDeleted   Outcome = iota // Synced and source deleted
	OutcomePreserved                // Confirmation timed out, source kept
	OutcomeFailed                   // Copy or delete failed, run continued
	OutcomeSkipped                  // Not started: cancellation observed first
)

// String returns a string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomePreserved:
		return "preserved"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "deleted"
	}
}

// ⏳ Waiter runs the post-copy confirmation wait for one destination path
type Waiter interface {
	Wait(ctx context.Context, dest string, transferStart time.Time) monitor.Outcome
}

// 🔧 Options configures an Orchestrator
type Options struct {
	// SourceRoot and DestRoot are the resolved tree roots; required
	SourceRoot string
	DestRoot   string
	// Monitor confirms synced destinations; required
	Monitor Waiter
	// Pruner removes emptied directories; required when PruneEmptyDirs
	Pruner *prune.Pruner
	// Cancel is checked at the top of the per-file loop; required
	Cancel *Signal
	// RunLog receives the run log lines and may be nil
	RunLog *log.Logger
	// Events receives pipeline progress and may be nil
	Events Sink

	// MaxFiles caps how many files are attempted, 0 meaning all
	MaxFiles int
	// IgnorePatterns are doublestar globs excluded from the run
	IgnorePatterns []string
	// PruneEmptyDirs enables pruning after each confirmed deletion
	PruneEmptyDirs bool
	// PruneWholeTree widens the prune scope from the file's parent
	// directory to the whole source root
	PruneWholeTree bool
}

// 📊 Summary aggregates a run's outcomes
type Summary struct {
	Attempted int
	Deleted   int
	Preserved int
	Failed    int
	Skipped   int
	Cancelled bool
}

// 🚚 Orchestrator processes files through the pipeline in path order
type Orchestrator struct {
	opts Options
}

// 🏭 New creates an orchestrator
func New(opts Options) (*Orchestrator, error) {
	if opts.SourceRoot == "" {
		return nil, errors.Errorf("source root is required")
	}
	if opts.DestRoot == "" {
		return nil, errors.Errorf("destination root is required")
	}
	if opts.Monitor == nil {
		return nil, errors.Errorf("monitor is required")
	}
	if opts.Cancel == nil {
		return nil, errors.Errorf("cancellation signal is required")
	}
	if opts.PruneEmptyDirs && opts.Pruner == nil {
		return nil, errors.Errorf("pruner is required when pruning is enabled")
	}
	return &Orchestrator{opts: opts}, nil
}

// 🏃 Run enumerates the source tree and processes up to MaxFiles files.
// Per-file errors never abort the run: only the cancellation signal stops
// new files from starting, and only at the loop boundary.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	logger := zerolog.Ctx(ctx)

	files, err := Enumerate(ctx, o.opts.SourceRoot, o.opts.IgnorePatterns, o.opts.MaxFiles)
	if err != nil {
		return Summary{}, errors.Errorf("enumerating source files: %w", err)
	}

	o.infof("starting run: %d file(s) selected from %s", len(files), o.opts.SourceRoot)

	var sum Summary
	for i, src := range files {
		if o.opts.Cancel.Fired() {
			o.infof("cancellation requested, stopping before %s", src)
			sum.Cancelled = true
			sum.Skipped = len(files) - i
			break
		}

		outcome := o.processFile(ctx, src, i+1, len(files))
		sum.Attempted++
		switch outcome {
		case OutcomeDeleted:
			sum.Deleted++
		case OutcomePreserved:
			sum.Preserved++
		case OutcomeFailed:
			sum.Failed++
		}
	}

	o.infof("run finished: attempted=%d deleted=%d preserved=%d failed=%d skipped=%d",
		sum.Attempted, sum.Deleted, sum.Preserved, sum.Failed, sum.Skipped)

	logger.Debug().
		Int("attempted", sum.Attempted).
		Int("deleted", sum.Deleted).
		Int("preserved", sum.Preserved).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Bool("cancelled", sum.Cancelled).
		Msg("run complete")

	return sum, nil
}

// 📄 processFile runs one file's pipeline to a terminal outcome. Once
// started it is never interrupted: cancellation is only honored between
// files.
func (o *Orchestrator) processFile(ctx context.Context, src string, index, total int) Outcome {
	dest, err := destPath(o.opts.SourceRoot, o.opts.DestRoot, src)
	if err != nil {
		o.errorf("resolving destination for %s: %v", src, err)
		o.emit(Event{Type: EventFileOutcome, Source: src, Index: index, Total: total, Outcome: OutcomeFailed, Err: err})
		return OutcomeFailed
	}

	o.emit(Event{Type: EventFileStarted, Source: src, Dest: dest, Index: index, Total: total})

	transferStart := time.Now()
	if err := copyFile(src, dest); err != nil {
		o.errorf("copying %s to %s: %v", src, dest, err)
		o.emit(Event{Type: EventFileOutcome, Source: src, Dest: dest, Index: index, Total: total, Outcome: OutcomeFailed, Err: err})
		return OutcomeFailed
	}

	o.infof("copied %s to %s", src, dest)
	o.emit(Event{Type: EventFileCopied, Source: src, Dest: dest, Index: index, Total: total})

	if o.opts.Monitor.Wait(ctx, dest, transferStart) == monitor.TimedOut {
		o.warnf("sync confirmation timed out for %s, preserving source %s", dest, src)
		o.emit(Event{Type: EventFileOutcome, Source: src, Dest: dest, Index: index, Total: total, Outcome: OutcomePreserved})
		return OutcomePreserved
	}

	if err := deleteSource(src); err != nil {
		// The destination copy is confirmed; a re-run re-copies the
		// same bytes and retries the delete
		o.errorf("deleting confirmed source %s: %v", src, err)
		o.emit(Event{Type: EventFileOutcome, Source: src, Dest: dest, Index: index, Total: total, Outcome: OutcomeFailed, Err: err})
		return OutcomeFailed
	}

	o.infof("deleted source %s after confirmed sync", src)

	if o.opts.PruneEmptyDirs {
		o.pruneAfterDelete(src)
	}

	o.emit(Event{Type: EventFileOutcome, Source: src, Dest: dest, Index: index, Total: total, Outcome: OutcomeDeleted})
	return OutcomeDeleted
}

// 🧹 pruneAfterDelete invokes the pruner with the configured scope
func (o *Orchestrator) pruneAfterDelete(src string) {
	scope := filepath.Dir(src)
	if o.opts.PruneWholeTree {
		scope = o.opts.SourceRoot
	}
	if err := o.opts.Pruner.Prune(prune.Request{
		RootBoundary: o.opts.SourceRoot,
		Scope:        scope,
	}); err != nil {
		o.warnf("pruning %s: %v", scope, err)
	}
}

// 🗑️ deleteSource removes the source file
func deleteSource(src string) error {
	if err := os.Remove(src); err != nil {
		return errors.Errorf("removing source file: %w", err)
	}
	return nil
}

// 📝 run log helpers, no-ops without a logger

func (o *Orchestrator) infof(format string, args ...interface{}) {
	if o.opts.RunLog != nil {
		o.opts.RunLog.Infof(format, args...)
	}
}

func (o *Orchestrator) warnf(format string, args ...interface{}) {
	if o.opts.RunLog != nil {
		o.opts.RunLog.Warnf(format, args...)
	}
}

func (o *Orchestrator) errorf(format string, args ...interface{}) {
	if o.opts.RunLog != nil {
		o.opts.RunLog.Errorf(format, args...)
	}
}

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

// Package monitor runs the post-copy confirmation loop for one file: it
// polls the sync status oracle until the destination has been stably done
// for the required number of consecutive observations, or times out.
package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/syncmv/pkg/log"
	"github.com/walteh/syncmv/pkg/oracle"
	"gitlab.com/tozd/go/errors"
)

// 🏁 Outcome is the terminal state of one confirmation wait
type Outcome int

const (
	Success  Outcome = iota // Required consecutive done observations reached
	TimedOut                // Timeout elapsed before stability was reached
)

// String returns a string representation of the outcome
func (o Outcome) String() string {
	if o == TimedOut {
		return "timed_out"
	}
	return "success"
}

// 📋 Observation is one poll tick as seen by subscribers
type Observation struct {
	RawStatus      string
	Classification oracle.Classification
	Stable         int // Consecutive done count after this observation
	Required       int
	Dest           string
	Elapsed        time.Duration // Process run time at the observation
}

// 🔧 Options configures a Monitor
type Options struct {
	// Probe answers raw sync status; required
	Probe oracle.Probe
	// Done and InProgress classify raw statuses; defaults applied when nil
	Done       oracle.Matcher
	InProgress oracle.Matcher
	// PollInterval is the sleep between ticks; required
	PollInterval time.Duration
	// Timeout bounds the wait, measured from the file's transfer start;
	// required
	Timeout time.Duration
	// StableRequired is the consecutive done count that declares success;
	// required
	StableRequired int
	// RunLog receives POLL records and may be nil
	RunLog *log.Logger
	// OnPoll is invoked after every tick and may be nil
	OnPoll func(Observation)
	// ProcessStart anchors the elapsed time shown in poll records; defaults
	// to monitor creation time
	ProcessStart time.Time
}

// ⏳ Monitor decides when a copied file is durably synced
type Monitor struct {
	opts Options

	// injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// 🏭 New creates a monitor
func New(opts Options) (*Monitor, error) {
	if opts.Probe == nil {
		return nil, errors.Errorf("probe is required")
	}
	if opts.PollInterval <= 0 {
		return nil, errors.Errorf("poll interval must be positive")
	}
	if opts.Timeout <= 0 {
		return nil, errors.Errorf("timeout must be positive")
	}
	if opts.StableRequired <= 0 {
		return nil, errors.Errorf("stable polls required must be positive")
	}
	if opts.Done == nil {
		opts.Done = oracle.DefaultDoneMatcher()
	}
	if opts.InProgress == nil {
		opts.InProgress = oracle.DefaultInProgressMatcher()
	}
	if opts.ProcessStart.IsZero() {
		opts.ProcessStart = time.Now()
	}
	return &Monitor{
		opts:  opts,
		now:   time.Now,
		sleep: time.Sleep,
	}, nil
}

// 🎯 Wait polls dest until Success or TimedOut. transferStart is when the
// file's copy was issued; the timeout is measured against it, on the poll
// cadence, so an in-flight sleep is never interrupted. The wait always runs
// to a terminal outcome: cancellation is honored by the caller between
// files, not mid-loop.
func (m *Monitor) Wait(ctx context.Context, dest string, transferStart time.Time) Outcome {
	logger := zerolog.Ctx(ctx)
	stable := 0

	for {
		raw, err := m.opts.Probe.Status(ctx, dest)
		if err != nil {
			// Probe failures classify as blank, same as an empty status
			logger.Debug().Err(err).Str("dest", dest).Msg("probe failed, treating as blank")
			raw = ""
		}

		class := oracle.Classify(raw, m.opts.Done, m.opts.InProgress)
		if class == oracle.Done {
			stable++
		} else {
			stable = 0
		}

		m.observe(raw, class, stable, dest)

		if stable >= m.opts.StableRequired {
			return Success
		}
		if m.now().Sub(transferStart) >= m.opts.Timeout {
			return TimedOut
		}

		m.sleep(m.opts.PollInterval)
	}
}

// 📝 observe fans one tick out to the run log and the poll callback
func (m *Monitor) observe(raw string, class oracle.Classification, stable int, dest string) {
	elapsed := m.now().Sub(m.opts.ProcessStart)

	if m.opts.RunLog != nil {
		m.opts.RunLog.Poll(log.PollRecord{
			RawStatus:  raw,
			Blank:      class == oracle.Blank,
			InProgress: class == oracle.InProgress,
			Done:       class == oracle.Done,
			Stable:     stable,
			Required:   m.opts.StableRequired,
			Dest:       dest,
			Elapsed:    elapsed,
		})
	}

	if m.opts.OnPoll != nil {
		m.opts.OnPoll(Observation{
			RawStatus:      raw,
			Classification: class,
			Stable:         stable,
			Required:       m.opts.StableRequired,
			Dest:           dest,
			Elapsed:        elapsed,
		})
	}
}

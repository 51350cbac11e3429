package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/syncmv/pkg/oracle"
)

// newTestMonitor builds a monitor with a manual clock: every sleep advances
// the clock by the poll interval
func newTestMonitor(t *testing.T, opts Options) (*Monitor, *time.Time) {
	t.Helper()

	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Minute
	}
	if opts.StableRequired == 0 {
		opts.StableRequired = 2
	}

	m, err := New(opts)
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	m.sleep = func(d time.Duration) { now = now.Add(d) }
	return m, &now
}

func TestWaitSuccessAfterConsecutiveDone(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	probe := oracle.NewScriptedProbe()
	probe.ScriptStatuses("/dest/f.txt",
		"Syncing",
		"Syncing",
		"Always available on this device",
		"Always available on this device",
	)

	var stables []int
	m, now := newTestMonitor(t, Options{
		Probe:  probe,
		OnPoll: func(obs Observation) { stables = append(stables, obs.Stable) },
	})

	outcome := m.Wait(ctx, "/dest/f.txt", *now)

	assert.Equal(t, Success, outcome)
	assert.Equal(t, 4, probe.Polls("/dest/f.txt"))
	// Two non-done polls leave the counter at zero, then two consecutive
	// done observations reach the threshold
	assert.Equal(t, []int{0, 0, 1, 2}, stables)
}

func TestWaitCounterResetsOnAnyNonDone(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	probe := oracle.NewScriptedProbe()
	probe.Script("/dest/f.txt",
		oracle.ScriptedStatus{Raw: "Up to date"},
		oracle.ScriptedStatus{Raw: "Syncing"}, // resets
		oracle.ScriptedStatus{Raw: "Up to date"},
		oracle.ScriptedStatus{Raw: ""}, // blank resets
		oracle.ScriptedStatus{Raw: "Up to date"},
		oracle.ScriptedStatus{Err: assert.AnError}, // probe failure resets
		oracle.ScriptedStatus{Raw: "Up to date"},
		oracle.ScriptedStatus{Raw: "some backend error"}, // other resets
		oracle.ScriptedStatus{Raw: "Up to date"},
		oracle.ScriptedStatus{Raw: "Up to date"},
	)

	var stables []int
	m, now := newTestMonitor(t, Options{
		Probe:  probe,
		OnPoll: func(obs Observation) { stables = append(stables, obs.Stable) },
	})

	outcome := m.Wait(ctx, "/dest/f.txt", *now)

	assert.Equal(t, Success, outcome)
	assert.Equal(t, []int{1, 0, 1, 0, 1, 0, 1, 0, 1, 2}, stables)
}

func TestWaitTimesOut(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	probe := oracle.NewScriptedProbe()
	probe.ScriptStatuses("/dest/f.txt", "Syncing")

	m, now := newTestMonitor(t, Options{
		Probe:          probe,
		PollInterval:   time.Second,
		Timeout:        5 * time.Second,
		StableRequired: 2,
	})

	outcome := m.Wait(ctx, "/dest/f.txt", *now)

	assert.Equal(t, TimedOut, outcome)
	// Timeout is evaluated on the poll cadence: ticks at 0..5s elapsed,
	// the sixth tick observes elapsed >= timeout
	assert.Equal(t, 6, probe.Polls("/dest/f.txt"))
}

func TestWaitSingleDoneNotTrusted(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	// A transient done report followed by renewed progress must not
	// declare success
	probe := oracle.NewScriptedProbe()
	probe.ScriptStatuses("/dest/f.txt", "Up to date", "Syncing")

	m, now := newTestMonitor(t, Options{
		Probe:          probe,
		PollInterval:   time.Second,
		Timeout:        3 * time.Second,
		StableRequired: 2,
	})

	outcome := m.Wait(ctx, "/dest/f.txt", *now)
	assert.Equal(t, TimedOut, outcome)
}

func TestWaitStableRequiredOne(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	probe := oracle.NewScriptedProbe()
	probe.ScriptStatuses("/dest/f.txt", "Up to date")

	m, now := newTestMonitor(t, Options{
		Probe:          probe,
		StableRequired: 1,
	})

	outcome := m.Wait(ctx, "/dest/f.txt", *now)
	assert.Equal(t, Success, outcome)
	assert.Equal(t, 1, probe.Polls("/dest/f.txt"))
}

func TestWaitTimeoutUsesTransferStart(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	probe := oracle.NewScriptedProbe()
	probe.ScriptStatuses("/dest/f.txt", "Syncing")

	m, now := newTestMonitor(t, Options{
		Probe:          probe,
		PollInterval:   time.Second,
		Timeout:        10 * time.Second,
		StableRequired: 2,
	})

	// The copy already consumed 9s of the file's timeout window before polling
	// started
	transferStart := now.Add(-9 * time.Second)
	outcome := m.Wait(ctx, "/dest/f.txt", transferStart)

	assert.Equal(t, TimedOut, outcome)
	assert.Equal(t, 2, probe.Polls("/dest/f.txt"))
}

func TestNewValidatesOptions(t *testing.T) {
	probe := oracle.NewScriptedProbe()

	tests := []struct {
		name string
		opts Options
	}{
		{name: "missing_probe", opts: Options{PollInterval: time.Second, Timeout: time.Minute, StableRequired: 1}},
		{name: "zero_poll_interval", opts: Options{Probe: probe, Timeout: time.Minute, StableRequired: 1}},
		{name: "zero_timeout", opts: Options{Probe: probe, PollInterval: time.Second, StableRequired: 1}},
		{name: "zero_stable_required", opts: Options{Probe: probe, PollInterval: time.Second, Timeout: time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			require.Error(t, err)
		})
	}
}

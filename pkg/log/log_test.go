package log

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := New(&buf, zerolog.New(zerolog.NewTestWriter(t)))
	l.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 34, 56, 0, time.UTC)
	}
	return l, &buf
}

func TestLineFormat(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Infof("copied %s", "a.txt")
	l.Warnf("timed out")
	l.Errorf("copy failed: %v", assert.AnError)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)

	assert.Equal(t, "[2025-06-01 12:34:56][INFO] copied a.txt", string(lines[0]))
	assert.Equal(t, "[2025-06-01 12:34:56][WARN] timed out", string(lines[1]))
	assert.Equal(t, "[2025-06-01 12:34:56][ERROR] copy failed: assert.AnError general error for testing", string(lines[2]))

	// Every line matches the machine-parsable record shape
	pattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\]\[(INFO|WARN|ERROR|POLL)\] .+$`)
	for _, line := range lines {
		assert.Regexp(t, pattern, string(line))
	}
}

func TestPollRecordCarriesRequiredFields(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Poll(PollRecord{
		RawStatus:  "Syncing",
		InProgress: true,
		Stable:     0,
		Required:   2,
		Dest:       "/vault/inbox/a.txt",
		Elapsed:    95 * time.Second,
	})

	line := string(bytes.TrimSpace(buf.Bytes()))
	assert.Contains(t, line, "[POLL]")
	assert.Contains(t, line, `status="Syncing"`)
	assert.Contains(t, line, "blank=false")
	assert.Contains(t, line, "in_progress=true")
	assert.Contains(t, line, "done=false")
	assert.Contains(t, line, "stable=0/2")
	assert.Contains(t, line, "dest=/vault/inbox/a.txt")
	assert.Contains(t, line, "elapsed=1m35s")
}

func TestNilFileWriter(t *testing.T) {
	l := New(nil, zerolog.New(zerolog.NewTestWriter(t)))

	// Console-only loggers must not panic
	l.Infof("hello")
	l.Poll(PollRecord{RawStatus: "Up to date", Done: true, Stable: 1, Required: 2})
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "POLL", LevelPoll.String())
}

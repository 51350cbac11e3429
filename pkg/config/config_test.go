package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	path := writeConfig(t, "syncmv.yaml", `
source: /data/outbox
destination: /vault/inbox
max_files: 25
poll_seconds: 5
timeout_seconds: 120
stable_polls: 3
done_patterns:
  - "always available on this device"
log_file: /var/log/syncmv.log
prune_whole_tree: true
ignore_patterns:
  - "**/*.tmp"
status_command: "query-status"
field_name_command: "query-field"
`)

	cfg, err := Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, "/data/outbox", cfg.Source)
	assert.Equal(t, "/vault/inbox", cfg.Destination)
	assert.Equal(t, 25, cfg.MaxFiles)
	assert.Equal(t, 5, cfg.PollSeconds)
	assert.Equal(t, 120, cfg.TimeoutSeconds)
	assert.Equal(t, 3, cfg.StablePolls)
	assert.Equal(t, []string{"always available on this device"}, cfg.DonePatterns)
	assert.True(t, cfg.PruneWholeTree)
	assert.False(t, cfg.NoPrune)
	assert.Equal(t, []string{"**/*.tmp"}, cfg.IgnorePatterns)
	assert.Equal(t, "query-status", cfg.StatusCommand)
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	path := writeConfig(t, "syncmv.yaml", `
source: /a
destination: /b
no_such_field: true
`)

	_, err := Load(ctx, path)
	require.Error(t, err)
}

func TestLoadHCL(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	path := writeConfig(t, "syncmv.hcl", `
source      = "/data/outbox"
destination = "/vault/inbox"
max_files   = 10
no_prune    = true
`)

	cfg, err := Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, "/data/outbox", cfg.Source)
	assert.Equal(t, "/vault/inbox", cfg.Destination)
	assert.Equal(t, 10, cfg.MaxFiles)
	assert.True(t, cfg.NoPrune)
}

func TestLoadNoParser(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	path := writeConfig(t, "syncmv.toml", `source = "/a"`)

	_, err := Load(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser found")
}

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{Source: "/a", Destination: "/b"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultPollSeconds, cfg.PollSeconds)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.TimeoutSeconds)
	assert.Equal(t, DefaultStablePolls, cfg.StablePolls)
	assert.Equal(t, 0, cfg.MaxFiles)
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing_source", mutate: func(c *Config) { c.Source = "" }},
		{name: "missing_destination", mutate: func(c *Config) { c.Destination = "" }},
		{name: "negative_max_files", mutate: func(c *Config) { c.MaxFiles = -1 }},
		{name: "poll_too_large", mutate: func(c *Config) { c.PollSeconds = MaxPollSeconds + 1 }},
		{name: "poll_negative", mutate: func(c *Config) { c.PollSeconds = -3 }},
		{name: "timeout_too_small", mutate: func(c *Config) { c.TimeoutSeconds = MinTimeoutSeconds - 1 }},
		{name: "timeout_too_large", mutate: func(c *Config) { c.TimeoutSeconds = MaxTimeoutSeconds + 1 }},
		{name: "stable_too_large", mutate: func(c *Config) { c.StablePolls = MaxStablePolls + 1 }},
		{name: "stable_negative", mutate: func(c *Config) { c.StablePolls = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Source: "/a", Destination: "/b"}
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := &Config{Source: "/a", Destination: "/b", PollSeconds: 7, TimeoutSeconds: 90}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "7s", cfg.PollInterval().String())
	assert.Equal(t, "1m30s", cfg.Timeout().String())
}

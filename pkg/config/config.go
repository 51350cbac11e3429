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

// Package config loads and validates syncmv run configuration from YAML or
// HCL files.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ⏱️ Bounds on the confirmation wait knobs
const (
	MinPollSeconds    = 1
	MaxPollSeconds    = 3600
	MinTimeoutSeconds = 5
	MaxTimeoutSeconds = 24 * 60 * 60
	MinStablePolls    = 1
	MaxStablePolls    = 100
)

// 🏗️ Defaults applied by Validate when a field is unset
const (
	DefaultPollSeconds    = 10
	DefaultTimeoutSeconds = 600
	DefaultStablePolls    = 2
)

// 📚 Config represents the complete run configuration
type Config struct {
	Source      string `json:"source" yaml:"source" hcl:"source"`
	Destination string `json:"destination" yaml:"destination" hcl:"destination"`

	// MaxFiles caps how many files one run attempts; 0 means all
	MaxFiles int `json:"max_files,omitempty" yaml:"max_files,omitempty" hcl:"max_files,optional"`

	PollSeconds    int `json:"poll_seconds,omitempty" yaml:"poll_seconds,omitempty" hcl:"poll_seconds,optional"`
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" hcl:"timeout_seconds,optional"`
	StablePolls    int `json:"stable_polls,omitempty" yaml:"stable_polls,omitempty" hcl:"stable_polls,optional"`

	// DonePatterns and InProgressPatterns override the status matcher
	// variant lists
	DonePatterns       []string `json:"done_patterns,omitempty" yaml:"done_patterns,omitempty" hcl:"done_patterns,optional"`
	InProgressPatterns []string `json:"in_progress_patterns,omitempty" yaml:"in_progress_patterns,omitempty" hcl:"in_progress_patterns,optional"`

	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty" hcl:"log_file,optional"`

	// NoPrune disables empty-directory pruning; PruneWholeTree widens the
	// prune scope from the file's parent to the whole source root
	NoPrune        bool `json:"no_prune,omitempty" yaml:"no_prune,omitempty" hcl:"no_prune,optional"`
	PruneWholeTree bool `json:"prune_whole_tree,omitempty" yaml:"prune_whole_tree,omitempty" hcl:"prune_whole_tree,optional"`

	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`

	// FieldNameCommand and StatusCommand are the oracle query commands,
	// run through the platform shell with SYNCMV_DIR / SYNCMV_NAME /
	// SYNCMV_FIELD in the environment
	FieldNameCommand string `json:"field_name_command,omitempty" yaml:"field_name_command,omitempty" hcl:"field_name_command,optional"`
	StatusCommand    string `json:"status_command,omitempty" yaml:"status_command,omitempty" hcl:"status_command,optional"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate applies defaults and checks bounds
func (cfg *Config) Validate() error {
	if cfg.Source == "" {
		return errors.Errorf("source is required")
	}
	if cfg.Destination == "" {
		return errors.Errorf("destination is required")
	}

	cfg.Source = filepath.Clean(cfg.Source)
	cfg.Destination = filepath.Clean(cfg.Destination)

	if cfg.MaxFiles < 0 {
		return errors.Errorf("max_files must not be negative")
	}

	if cfg.PollSeconds == 0 {
		cfg.PollSeconds = DefaultPollSeconds
	}
	if cfg.PollSeconds < MinPollSeconds || cfg.PollSeconds > MaxPollSeconds {
		return errors.Errorf("poll_seconds must be between %d and %d", MinPollSeconds, MaxPollSeconds)
	}

	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.TimeoutSeconds < MinTimeoutSeconds || cfg.TimeoutSeconds > MaxTimeoutSeconds {
		return errors.Errorf("timeout_seconds must be between %d and %d", MinTimeoutSeconds, MaxTimeoutSeconds)
	}

	if cfg.StablePolls == 0 {
		cfg.StablePolls = DefaultStablePolls
	}
	if cfg.StablePolls < MinStablePolls || cfg.StablePolls > MaxStablePolls {
		return errors.Errorf("stable_polls must be between %d and %d", MinStablePolls, MaxStablePolls)
	}

	return nil
}

// ⏱️ PollInterval returns the poll interval as a duration
func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.PollSeconds) * time.Second
}

// ⏱️ Timeout returns the confirmation timeout as a duration
func (cfg *Config) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (max=%d, poll=%ds, timeout=%ds, stable=%d)",
		cfg.Source, cfg.Destination, cfg.MaxFiles, cfg.PollSeconds, cfg.TimeoutSeconds, cfg.StablePolls)
}

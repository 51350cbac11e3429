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

// Package oracle queries an external sync agent for the sync state of a
// destination path and classifies the answer.
package oracle

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Probe answers the current raw sync status of a single path. A returned
// error is never fatal to the caller: it classifies as Blank and resets the
// stability counter exactly like any other non-done observation.
type Probe interface {
	Status(ctx context.Context, path string) (string, error)
}

// 🔌 Runner is the out-of-process metadata source behind the shell probe.
// FieldName answers the display name of the metadata field at the given
// index for a folder; FieldValue answers the value of that field for one
// item inside the folder.
type Runner interface {
	FieldName(ctx context.Context, dir string, field int) (string, error)
	FieldValue(ctx context.Context, dir, name string, field int) (string, error)
}

// 🔧 ShellProbeOptions configures field index discovery
type ShellProbeOptions struct {
	// FieldNameContains selects the status field during discovery,
	// matched case-insensitively against the field display name
	FieldNameContains string
	// MaxFieldScan bounds how many candidate field indexes are probed
	MaxFieldScan int
	// DefaultFieldIndex is used when discovery finds no matching field
	DefaultFieldIndex int
}

// 🏗️ defaults mirror the availability-status column of the usual shell
// metadata source
const (
	defaultFieldNameContains = "availability status"
	defaultMaxFieldScan      = 400
	defaultFieldIndex        = 303
)

// 🔎 ShellProbe resolves sync status through a Runner, caching the status
// field index per containing directory. The cache is append-only and lives
// for the process lifetime: discovery runs at most once per distinct parent.
type ShellProbe struct {
	runner Runner
	opts   ShellProbeOptions

	mu     sync.Mutex
	fields map[string]int // parent directory -> status field index
}

// 🏭 NewShellProbe creates a probe backed by the given runner
func NewShellProbe(runner Runner, opts ShellProbeOptions) (*ShellProbe, error) {
	if runner == nil {
		return nil, errors.Errorf("runner is required")
	}
	if opts.FieldNameContains == "" {
		opts.FieldNameContains = defaultFieldNameContains
	}
	if opts.MaxFieldScan <= 0 {
		opts.MaxFieldScan = defaultMaxFieldScan
	}
	if opts.DefaultFieldIndex <= 0 {
		opts.DefaultFieldIndex = defaultFieldIndex
	}
	return &ShellProbe{
		runner: runner,
		opts:   opts,
		fields: make(map[string]int),
	}, nil
}

// 🎯 Status implements Probe
func (p *ShellProbe) Status(ctx context.Context, path string) (string, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)

	field := p.fieldIndex(ctx, dir)

	raw, err := p.runner.FieldValue(ctx, dir, name, field)
	if err != nil {
		return "", errors.Errorf("querying status of %s: %w", path, err)
	}
	return raw, nil
}

// 🔍 fieldIndex returns the cached status field index for dir, discovering
// it on first use
func (p *ShellProbe) fieldIndex(ctx context.Context, dir string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if field, ok := p.fields[dir]; ok {
		return field
	}

	field := p.discoverFieldIndex(ctx, dir)
	p.fields[dir] = field
	return field
}

// 🔭 discoverFieldIndex scans candidate field positions for the status
// field. Falls back to the fixed default index when no candidate matches.
func (p *ShellProbe) discoverFieldIndex(ctx context.Context, dir string) int {
	logger := zerolog.Ctx(ctx)
	want := strings.ToLower(p.opts.FieldNameContains)

	for i := 0; i < p.opts.MaxFieldScan; i++ {
		name, err := p.runner.FieldName(ctx, dir, i)
		if err != nil {
			// A failing name lookup disqualifies this index only
			continue
		}
		if strings.Contains(strings.ToLower(name), want) {
			logger.Debug().Str("dir", dir).Int("field", i).Str("name", name).
				Msg("discovered status field index")
			return i
		}
	}

	logger.Debug().Str("dir", dir).Int("field", p.opts.DefaultFieldIndex).
		Msg("status field not found, using default index")
	return p.opts.DefaultFieldIndex
}

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

package oracle

import (
	"context"
	"sync"
)

// 🎬 ScriptedProbe replays a fixed status sequence per path, repeating the
// last entry once the script is exhausted. It stands in for the real sync
// agent in tests and dry runs.
type ScriptedProbe struct {
	mu       sync.Mutex
	scripts  map[string][]ScriptedStatus
	position map[string]int
	polls    map[string]int
	fallback ScriptedStatus
}

// 🎬 ScriptedStatus is one scripted oracle answer
type ScriptedStatus struct {
	Raw string
	Err error
}

// 🏭 NewScriptedProbe creates a probe with no scripts; unscripted paths
// answer the fallback (blank by default)
func NewScriptedProbe() *ScriptedProbe {
	return &ScriptedProbe{
		scripts:  make(map[string][]ScriptedStatus),
		position: make(map[string]int),
		polls:    make(map[string]int),
	}
}

// 📝 Script sets the status sequence for a path
func (p *ScriptedProbe) Script(path string, statuses ...ScriptedStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts[path] = statuses
}

// 📝 ScriptStatuses sets a plain string sequence for a path
func (p *ScriptedProbe) ScriptStatuses(path string, statuses ...string) {
	scripted := make([]ScriptedStatus, len(statuses))
	for i, s := range statuses {
		scripted[i] = ScriptedStatus{Raw: s}
	}
	p.Script(path, scripted...)
}

// 🎯 Status implements Probe
func (p *ScriptedProbe) Status(ctx context.Context, path string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.polls[path]++

	script, ok := p.scripts[path]
	if !ok || len(script) == 0 {
		return p.fallback.Raw, p.fallback.Err
	}

	i := p.position[path]
	if i >= len(script) {
		i = len(script) - 1
	} else {
		p.position[path] = i + 1
	}
	return script[i].Raw, script[i].Err
}

// 🔢 Polls reports how many times a path has been queried
func (p *ScriptedProbe) Polls(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls[path]
}

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

import "github.com/walteh/syncmv/pkg/monitor"

// 🎨 EventType identifies a pipeline progress event
type EventType int

const (
	EventFileStarted EventType = iota // A file's pipeline began
	EventFileCopied                   // Copy finished, confirmation wait begins
	EventPollTick                     // One sync status observation
	EventFileOutcome                  // The file reached a terminal outcome
)

// 🖼️ Event is one pipeline progress notification. The core emits events but
// renders nothing: spinners and progress output live in the presentation
// layer subscribed to this stream.
type Event struct {
	Type    EventType
	Source  string
	Dest    string
	Index   int // 1-based position in the run
	Total   int // Files attempted this run
	Outcome Outcome
	Err     error
	Poll    *monitor.Observation // Set for EventPollTick only
}

// 📢 Sink consumes pipeline events. A nil sink drops them.
type Sink func(Event)

// emit sends an event if a sink is configured
func (o *Orchestrator) emit(ev Event) {
	if o.opts.Events != nil {
		o.opts.Events(ev)
	}
}

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

import "sync/atomic"

// 🛑 Signal is the cooperative cancellation flag. It is set once, never
// reset, and read by the orchestrator only at file-loop boundaries: a file
// whose pipeline has started always runs to a terminal outcome.
type Signal struct {
	fired atomic.Bool
}

// NewSignal creates an unset signal
func NewSignal() *Signal {
	return &Signal{}
}

// Set requests a stop. Safe to call from any goroutine, any number of times.
func (s *Signal) Set() {
	s.fired.Store(true)
}

// Fired reports whether a stop has been requested
func (s *Signal) Fired() bool {
	return s.fired.Load()
}

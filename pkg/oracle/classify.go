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

import "strings"

// 📊 Classification is the interpreted sync state of a destination path
type Classification int

const (
	Blank      Classification = iota // Empty status or probe failure
	InProgress                       // Sync agent is still transferring
	Done                             // Fully replicated, safe to delete the source
	Other                            // Non-blank status matching neither matcher
)

// String returns a string representation of the classification
func (c Classification) String() string {
	switch c {
	case InProgress:
		return "in_progress"
	case Done:
		return "done"
	case Other:
		return "other"
	default:
		return "blank"
	}
}

// 🔍 Matcher decides whether a raw status string matches a status family
type Matcher interface {
	Match(raw string) bool
}

// 🧩 Variants matches a status against a fixed set of accepted spellings,
// compared case-insensitively after trimming surrounding whitespace
type Variants []string

func (v Variants) Match(raw string) bool {
	raw = strings.TrimSpace(raw)
	for _, want := range v {
		if strings.EqualFold(raw, want) {
			return true
		}
	}
	return false
}

// 🏭 DefaultDoneMatcher matches the fully-available-on-this-device family
func DefaultDoneMatcher() Matcher {
	return Variants{
		"always available on this device",
		"always available",
		"available on this device",
		"fully available on this device",
		"up to date",
	}
}

// 🏭 DefaultInProgressMatcher matches the pending/transferring family
func DefaultInProgressMatcher() Matcher {
	return Variants{
		"sync pending",
		"pending",
		"syncing",
		"uploading",
		"downloading",
	}
}

// 🎯 Classify maps a raw status string to a Classification. A blank or
// whitespace-only status is Blank; anything non-blank matching neither
// matcher is Other. Other and InProgress are equivalent for stability: both
// reset the consecutive done count.
func Classify(raw string, done, inProgress Matcher) Classification {
	if strings.TrimSpace(raw) == "" {
		return Blank
	}
	if done != nil && done.Match(raw) {
		return Done
	}
	if inProgress != nil && inProgress.Match(raw) {
		return InProgress
	}
	return Other
}

// Copyright 2019 Google LLC
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

// Package eligibility decides which candidate sets may form a match. The
// filter is a pure function of the candidate set and the static rule
// configuration: no clock, no randomness, no state. Anything else would
// break the reproducibility the attested output depends on.
package eligibility

import (
	"math"

	"github.com/arena-imperium/arena-matchmaking-function/internal/set"
	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

// Filter holds the rule configuration for one engine invocation.
type Filter struct {
	rules arena.Rules
}

// New validates the rule configuration and returns a Filter.
func New(rules arena.Rules) (*Filter, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Filter{rules: rules}, nil
}

// Rules returns the configuration the filter was built with.
func (f *Filter) Rules() arena.Rules {
	return f.rules
}

// Eligible reports whether the candidate set may be matched together. It is
// total: degenerate sets are simply ineligible, never an error.
func (f *Filter) Eligible(candidates []arena.ParticipantRequest) bool {
	if len(candidates) < 2 {
		return false
	}

	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			if !f.pairEligible(&candidates[i], &candidates[j]) {
				return false
			}
		}
	}

	return true
}

func (f *Filter) pairEligible(a, b *arena.ParticipantRequest) bool {
	if a.Identity == b.Identity {
		return false
	}

	if math.Abs(a.Rating-b.Rating) > f.rules.MaxRatingDelta {
		return false
	}

	if f.rules.RequireSameRegion && a.Region != b.Region {
		return false
	}

	if f.rules.RequireSameMode && a.Mode != b.Mode {
		return false
	}

	// Exclusions are symmetric: either side naming the other blocks the pair.
	if set.Contains(a.Exclusions, b.Identity) || set.Contains(b.Exclusions, a.Identity) {
		return false
	}

	if w := f.rules.HistoryWindow; w > 0 {
		if set.Contains(window(a.History, w), b.Identity) || set.Contains(window(b.History, w), a.Identity) {
			return false
		}
	}

	return true
}

// window returns the first n entries of the history digest. The digest is
// most recent first, so this is the anti-repeat window.
func window(history []string, n int) []string {
	if len(history) <= n {
		return history
	}
	return history[:n]
}

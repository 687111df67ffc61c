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

package eligibility

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/arena-imperium/arena-matchmaking-function/internal/eligibility/testcases"
	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name  string
		rules arena.Rules
	}{
		{"matchSizeZero", arena.Rules{MatchSize: 0}},
		{"matchSizeOne", arena.Rules{MatchSize: 1}},
		{"negativeDelta", arena.Rules{MatchSize: 2, MaxRatingDelta: -1}},
		{"negativeHistoryWindow", arena.Rules{MatchSize: 2, HistoryWindow: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.rules)
			require.Nil(t, f)
			require.Error(t, err)
			require.True(t, errors.Is(err, arena.ErrInvalidConfiguration))
		})
	}
}

func TestEligible(t *testing.T) {
	for _, tt := range testcases.EligibleTestCases() {
		t.Run(tt.Name, func(t *testing.T) {
			f, err := New(tt.Rules)
			require.NoError(t, err)
			if !f.Eligible(tt.Candidates) {
				t.Error("candidate set should be eligible")
			}
		})
	}
}

func TestIneligible(t *testing.T) {
	for _, tt := range testcases.IneligibleTestCases() {
		t.Run(tt.Name, func(t *testing.T) {
			f, err := New(tt.Rules)
			require.NoError(t, err)
			if f.Eligible(tt.Candidates) {
				t.Error("candidate set should not be eligible")
			}
		})
	}
}

func TestEligibleNWay(t *testing.T) {
	require := require.New(t)

	rules := arena.Rules{
		MaxRatingDelta:    100,
		RequireSameRegion: true,
		RequireSameMode:   true,
		MatchSize:         3,
	}
	f, err := New(rules)
	require.NoError(err)

	a := arena.ParticipantRequest{Identity: "a", Rating: 1000, Region: "EU", Mode: "ffa"}
	b := arena.ParticipantRequest{Identity: "b", Rating: 1050, Region: "EU", Mode: "ffa"}
	c := arena.ParticipantRequest{Identity: "c", Rating: 1100, Region: "EU", Mode: "ffa"}
	d := arena.ParticipantRequest{Identity: "d", Rating: 1150, Region: "EU", Mode: "ffa"}

	// a..c pairwise within delta, a..d is not.
	require.True(f.Eligible([]arena.ParticipantRequest{a, b, c}))
	require.False(f.Eligible([]arena.ParticipantRequest{a, b, d}))
}

func TestEligibleIsPure(t *testing.T) {
	require := require.New(t)

	f, err := New(arena.Rules{MaxRatingDelta: 50, MatchSize: 2})
	require.NoError(err)

	a := arena.ParticipantRequest{Identity: "a", Rating: 1000}
	b := arena.ParticipantRequest{Identity: "b", Rating: 1010}
	candidates := []arena.ParticipantRequest{a, b}

	first := f.Eligible(candidates)
	for i := 0; i < 100; i++ {
		require.Equal(first, f.Eligible(candidates))
	}
	require.Equal(a, candidates[0], "filter must not mutate candidates")
	require.Equal(b, candidates[1], "filter must not mutate candidates")
}

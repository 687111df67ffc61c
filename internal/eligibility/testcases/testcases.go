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

// Package testcases contains lists of eligibility test cases shared between
// the filter tests and the engine tests.
package testcases

import (
	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

// TestCase defines a single candidate-set evaluation to run.
type TestCase struct {
	Name       string
	Rules      arena.Rules
	Candidates []arena.ParticipantRequest
}

func pairRules() arena.Rules {
	return arena.Rules{
		MaxRatingDelta:    50,
		RequireSameRegion: true,
		RequireSameMode:   true,
		HistoryWindow:     2,
		MatchSize:         2,
	}
}

func participant(id string, rating float64, region, mode string) arena.ParticipantRequest {
	return arena.ParticipantRequest{
		Identity: id,
		Rating:   rating,
		Region:   region,
		Mode:     mode,
	}
}

// EligibleTestCases returns candidate sets the filter must accept.
func EligibleTestCases() []TestCase {
	exactDelta := pairRules()

	looseRegion := pairRules()
	looseRegion.RequireSameRegion = false

	looseMode := pairRules()
	looseMode.RequireSameMode = false

	oldOpponent := participant("a", 1000, "EU", "1v1")
	oldOpponent.History = []string{"x", "y", "b"}

	historyDisabled := pairRules()
	historyDisabled.HistoryWindow = 0
	recentOpponent := participant("a", 1000, "EU", "1v1")
	recentOpponent.History = []string{"b"}

	return []TestCase{
		{
			Name:  "simplePair",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				participant("b", 1010, "EU", "1v1"),
			},
		},
		{
			Name:  "deltaAtBound",
			Rules: exactDelta,
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				participant("b", 1050, "EU", "1v1"),
			},
		},
		{
			Name:  "crossRegionAllowed",
			Rules: looseRegion,
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				participant("b", 1000, "NA", "1v1"),
			},
		},
		{
			Name:  "crossModeAllowed",
			Rules: looseMode,
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				participant("b", 1000, "EU", "2v2"),
			},
		},
		{
			Name:  "opponentOutsideHistoryWindow",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				oldOpponent,
				participant("b", 1000, "EU", "1v1"),
			},
		},
		{
			Name:  "historyWindowDisabled",
			Rules: historyDisabled,
			Candidates: []arena.ParticipantRequest{
				recentOpponent,
				participant("b", 1000, "EU", "1v1"),
			},
		},
	}
}

// IneligibleTestCases returns candidate sets the filter must reject.
func IneligibleTestCases() []TestCase {
	excluding := participant("a", 1000, "EU", "1v1")
	excluding.Exclusions = []string{"b"}

	excluded := participant("b", 1000, "EU", "1v1")
	excluded.Exclusions = []string{"a"}

	recent := participant("a", 1000, "EU", "1v1")
	recent.History = []string{"x", "b"}

	recentOther := participant("b", 1000, "EU", "1v1")
	recentOther.History = []string{"a"}

	return []TestCase{
		{
			Name:  "deltaExceeded",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				participant("b", 1051, "EU", "1v1"),
			},
		},
		{
			Name:  "regionMismatch",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				participant("b", 1000, "NA", "1v1"),
			},
		},
		{
			Name:  "modeMismatch",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				participant("b", 1000, "EU", "2v2"),
			},
		},
		{
			Name:  "exclusionForward",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				excluding,
				participant("b", 1000, "EU", "1v1"),
			},
		},
		{
			Name:  "exclusionReverse",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				excluded,
			},
		},
		{
			Name:  "recentOpponent",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				recent,
				participant("b", 1000, "EU", "1v1"),
			},
		},
		{
			Name:  "recentOpponentReverse",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				recentOther,
			},
		},
		{
			Name:  "duplicateIdentity",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
				participant("a", 1000, "EU", "1v1"),
			},
		},
		{
			Name:  "singleton",
			Rules: pairRules(),
			Candidates: []arena.ParticipantRequest{
				participant("a", 1000, "EU", "1v1"),
			},
		},
	}
}

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

// Package arena defines the data contracts crossing the matchmaking core's
// boundary: participant requests going in, matches and outcomes coming out.
// Everything here is a plain serializable value; the harness owns decoding
// the oracle request and signing the result.
package arena

// ParticipantRequest is a single pending request for a match. It is immutable
// once admitted: the pool owns it until it is consumed into a Match or
// carried over as residual.
type ParticipantRequest struct {
	// Identity is the opaque unique id of the requesting participant.
	Identity string `json:"identity"`

	// Rating is the participant's skill rating.
	Rating float64 `json:"rating"`

	Region string `json:"region"`
	Mode   string `json:"mode"`

	// Sequence is the arrival sequence number, assigned at admission.
	// It is the authoritative tie-break for every ordering decision.
	Sequence uint64 `json:"sequence"`

	// Exclusions lists identities this participant must never be matched
	// with. Exclusions are applied symmetrically.
	Exclusions []string `json:"exclusions,omitempty"`

	// History lists recent opponent identities, most recent first. Only the
	// first Rules.HistoryWindow entries are consulted.
	History []string `json:"history,omitempty"`
}

// Rules is the static rule configuration for one engine invocation. It is
// supplied per call, never hard coded, so one measured binary can serve
// differing arena rule sets.
type Rules struct {
	MaxRatingDelta    float64 `json:"maxRatingDelta"`
	RequireSameRegion bool    `json:"requireSameRegion"`
	RequireSameMode   bool    `json:"requireSameMode"`
	HistoryWindow     int     `json:"historyWindow"`

	// MatchSize is the number of participants per match, 2 or more.
	MatchSize int `json:"matchSize"`
}

// Validate fails fast on contradictory rule values, before any pass runs.
func (r Rules) Validate() error {
	if r.MatchSize < 2 {
		return Errorf(ErrInvalidConfiguration, "matchSize must be at least 2, got %d", r.MatchSize)
	}
	if r.MaxRatingDelta < 0 {
		return Errorf(ErrInvalidConfiguration, "maxRatingDelta must not be negative, got %v", r.MaxRatingDelta)
	}
	if r.HistoryWindow < 0 {
		return Errorf(ErrInvalidConfiguration, "historyWindow must not be negative, got %d", r.HistoryWindow)
	}
	return nil
}

// Match is one completed grouping. Participants are kept in formation order
// for audit; the id is derived from the canonically sorted participant set,
// so the formation order never influences it.
type Match struct {
	ID string `json:"id"`

	// Participants holds the member identities in formation order.
	Participants []string `json:"participants"`

	AverageRating float64 `json:"averageRating"`
	RatingSpread  float64 `json:"ratingSpread"`

	// Sequence is the formation sequence number within the pass.
	Sequence uint64 `json:"sequence"`
}

// MatchingOutcome is the sole artifact crossing the core's output boundary:
// the formed matches in formation order plus the residual pool in arrival
// order. It is handed to the serialization/signing layer as-is.
type MatchingOutcome struct {
	Matches  []Match              `json:"matches"`
	Residual []ParticipantRequest `json:"residual"`
}

// OutcomeError is published in place of a MatchingOutcome when a job is
// rejected after its id is known, so the requester always receives a
// terminal signal instead of polling forever.
type OutcomeError struct {
	Error string `json:"error"`
}

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

// Package outcome turns the engine's proposals into the canonical, order
// stable artifact the signing layer attests. Building an outcome never
// mutates the pool; the engine owns pool mutation.
package outcome

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/arena-imperium/arena-matchmaking-function/internal/engine"
	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

// Build converts proposals plus the residual into a MatchingOutcome. Match
// ids are a pure function of the canonical participant set and the formation
// sequence number, so re-running the engine on the same snapshot yields
// byte-identical results.
func Build(proposals []engine.Proposal, residual []arena.ParticipantRequest) *arena.MatchingOutcome {
	matches := make([]arena.Match, 0, len(proposals))
	for _, p := range proposals {
		matches = append(matches, toMatch(p))
	}

	if residual == nil {
		residual = []arena.ParticipantRequest{}
	}

	return &arena.MatchingOutcome{
		Matches:  matches,
		Residual: residual,
	}
}

func toMatch(p engine.Proposal) arena.Match {
	ids := make([]string, 0, len(p.Participants))
	min, max, sum := 0.0, 0.0, 0.0
	for i, m := range p.Participants {
		ids = append(ids, m.Identity)
		sum += m.Rating
		if i == 0 || m.Rating < min {
			min = m.Rating
		}
		if i == 0 || m.Rating > max {
			max = m.Rating
		}
	}

	var avg float64
	if len(p.Participants) > 0 {
		avg = sum / float64(len(p.Participants))
	}

	return arena.Match{
		ID:            MatchID(ids, p.Sequence),
		Participants:  ids,
		AverageRating: avg,
		RatingSpread:  max - min,
		Sequence:      p.Sequence,
	}
}

// MatchID derives the deterministic match id: a SHA-256 over the lexically
// sorted participant identities and the formation sequence number. The
// sequence number disambiguates identical participant sets across rounds,
// which the engine's invariants already rule out within one pass but is
// guarded regardless.
func MatchID(identities []string, sequence uint64) string {
	sorted := make([]string, len(identities))
	copy(sorted, identities)
	sort.Strings(sorted)

	h := sha256.New()
	for _, id := range sorted {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	fmt.Fprintf(h, "%d", sequence)

	return hex.EncodeToString(h.Sum(nil))
}

// Canonical serializes the outcome into the byte-stable form handed to the
// signing layer. Field order is fixed by the struct definitions and no maps
// are involved, so identical outcomes always produce identical bytes.
func Canonical(o *arena.MatchingOutcome) ([]byte, error) {
	return json.Marshal(o)
}

// CanonicalError serializes a job rejection for publication under the job
// id. Rejected jobs still complete from the requester's point of view.
func CanonicalError(cause error) ([]byte, error) {
	return json.Marshal(&arena.OutcomeError{Error: cause.Error()})
}

// Digest returns the hex SHA-256 of the canonical serialization, the value
// an external verifier compares against the attested result.
func Digest(o *arena.MatchingOutcome) (string, error) {
	raw, err := Canonical(o)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

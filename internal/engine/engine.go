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

// Package engine implements deterministic greedy bucketed matching. One call
// consumes one pool snapshot and produces proposals plus the residual, with
// no internal concurrency: the output is a pure function of the snapshot and
// the rule configuration, so anyone holding the same inputs can re-derive it.
package engine

import (
	"sort"

	"github.com/arena-imperium/arena-matchmaking-function/internal/eligibility"
	"github.com/arena-imperium/arena-matchmaking-function/internal/pool"
	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

// Proposal is one completed grouping as the engine formed it: the head
// participant first, then the selected candidates in arrival order. The
// result builder turns proposals into canonical matches.
type Proposal struct {
	Participants []arena.ParticipantRequest
	Sequence     uint64
}

// Engine runs pairing passes under a fixed filter. It holds no mutable
// state; Run may be called from concurrent invocations on distinct snapshots.
type Engine struct {
	filter *eligibility.Filter
	size   int
}

// New returns an engine pairing candidate sets of the filter's match size.
func New(filter *eligibility.Filter) *Engine {
	return &Engine{
		filter: filter,
		size:   filter.Rules().MatchSize,
	}
}

// Run performs one pairing pass over the snapshot. It returns the formed
// proposals in formation order and the residual requests in their original
// arrival order. A pass that forms nothing is a normal outcome.
func (e *Engine) Run(snapshot []arena.ParticipantRequest) ([]Proposal, []arena.ParticipantRequest) {
	buckets := map[pool.BucketKey][]arena.ParticipantRequest{}
	var keys []pool.BucketKey
	for _, req := range snapshot {
		k := pool.BucketKey{Region: req.Region, Mode: req.Mode}
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], req)
	}

	// Lexicographic bucket order keeps cross-bucket match ordering
	// reproducible regardless of snapshot composition.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Region != keys[j].Region {
			return keys[i].Region < keys[j].Region
		}
		return keys[i].Mode < keys[j].Mode
	})

	var proposals []Proposal
	matched := map[string]bool{}
	var sequence uint64

	for _, k := range keys {
		remaining := buckets[k]

		for len(remaining) >= e.size {
			head := remaining[0]
			found := e.firstFit(head, remaining[1:])
			if found == nil {
				// No complete eligible set exists for this head among the
				// remaining members; carry it over and move on.
				remaining = remaining[1:]
				continue
			}

			members := make([]arena.ParticipantRequest, 0, e.size)
			members = append(members, head)
			for _, i := range found {
				members = append(members, remaining[1+i])
			}
			for _, m := range members {
				matched[m.Identity] = true
			}

			proposals = append(proposals, Proposal{
				Participants: members,
				Sequence:     sequence,
			})
			sequence++

			remaining = without(remaining, found)
		}
	}

	residual := make([]arena.ParticipantRequest, 0, len(snapshot)-len(matched))
	for _, req := range snapshot {
		if !matched[req.Identity] {
			residual = append(residual, req)
		}
	}

	return proposals, residual
}

// firstFit scans forward through candidates for the first size-1 members that
// jointly form an eligible set with the head. "First" means the
// lexicographically smallest index combination, which makes the selection a
// pure function of arrival order. Returns nil if no complete set exists.
//
// The backtracking search assumes small match sizes: for a bucket of B
// members it is O(B²) per head at size 2 but grows combinatorially with the
// match size, so sizes are expected to stay in the single digits.
func (e *Engine) firstFit(head arena.ParticipantRequest, candidates []arena.ParticipantRequest) []int {
	want := e.size - 1
	if len(candidates) < want {
		return nil
	}

	picked := make([]int, 0, want)
	current := make([]arena.ParticipantRequest, 1, e.size)
	current[0] = head

	var search func(from int) bool
	search = func(from int) bool {
		if len(picked) == want {
			return e.filter.Eligible(current)
		}
		for i := from; i <= len(candidates)-(want-len(picked)); i++ {
			current = append(current, candidates[i])
			// Pairwise rules are monotone, so pruning on a partial set never
			// discards a viable completion.
			if len(current) == e.size || e.filter.Eligible(current) {
				picked = append(picked, i)
				if search(i + 1) {
					return true
				}
				picked = picked[:len(picked)-1]
			}
			current = current[:len(current)-1]
		}
		return false
	}

	if !search(0) {
		return nil
	}
	return picked
}

// without returns the bucket members minus the head (index 0) and the picked
// candidate indices, preserving relative order.
func without(remaining []arena.ParticipantRequest, picked []int) []arena.ParticipantRequest {
	drop := map[int]bool{0: true}
	for _, i := range picked {
		drop[1+i] = true
	}

	out := make([]arena.ParticipantRequest, 0, len(remaining)-len(drop))
	for i, req := range remaining {
		if !drop[i] {
			out = append(out, req)
		}
	}
	return out
}

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

// Package pool holds the currently unmatched participant requests. The
// arrival-ordered sequence is the single source of truth; the bucket and
// skill-band indices are derived lookups and never influence iteration order.
package pool

import (
	"math"

	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

// BandWidth is the width of one skill-band index slot in rating points.
const BandWidth = 100

// BucketKey identifies a (region, mode) bucket.
type BucketKey struct {
	Region string
	Mode   string
}

// Pool is an ordered collection of participant requests keyed by identity.
// It is not safe for concurrent use; each engine invocation owns its pool.
type Pool struct {
	ordered    []arena.ParticipantRequest
	byIdentity map[string]int
	byBucket   map[BucketKey][]string
	byBand     map[int][]string
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{
		byIdentity: map[string]int{},
		byBucket:   map[BucketKey][]string{},
		byBand:     map[int][]string{},
	}
}

// Len returns the number of pooled requests.
func (p *Pool) Len() int {
	return len(p.ordered)
}

// NextSequence returns the arrival sequence number the next admitted request
// should carry: one past the highest sequence currently pooled.
func (p *Pool) NextSequence() uint64 {
	var max uint64
	for _, r := range p.ordered {
		if r.Sequence >= max {
			max = r.Sequence + 1
		}
	}
	return max
}

// Insert adds a request to the pool. It returns ErrDuplicateIdentity if the
// identity is already pooled.
func (p *Pool) Insert(req arena.ParticipantRequest) error {
	if req.Identity == "" {
		return arena.Errorf(arena.ErrInvalidConfiguration, "participant request has empty identity")
	}
	if _, ok := p.byIdentity[req.Identity]; ok {
		return arena.Errorf(arena.ErrDuplicateIdentity, "identity %q", req.Identity)
	}

	p.byIdentity[req.Identity] = len(p.ordered)
	p.ordered = append(p.ordered, req)

	bk := BucketKey{Region: req.Region, Mode: req.Mode}
	p.byBucket[bk] = append(p.byBucket[bk], req.Identity)

	band := Band(req.Rating)
	p.byBand[band] = append(p.byBand[band], req.Identity)

	return nil
}

// Remove takes the request with the given identity out of the pool and
// returns it. It returns ErrNotFound if the identity is not pooled.
func (p *Pool) Remove(identity string) (arena.ParticipantRequest, error) {
	i, ok := p.byIdentity[identity]
	if !ok {
		return arena.ParticipantRequest{}, arena.Errorf(arena.ErrNotFound, "identity %q", identity)
	}

	req := p.ordered[i]
	p.ordered = append(p.ordered[:i], p.ordered[i+1:]...)
	delete(p.byIdentity, identity)
	for j := i; j < len(p.ordered); j++ {
		p.byIdentity[p.ordered[j].Identity] = j
	}

	bk := BucketKey{Region: req.Region, Mode: req.Mode}
	p.byBucket[bk] = dropIdentity(p.byBucket[bk], identity)
	if len(p.byBucket[bk]) == 0 {
		delete(p.byBucket, bk)
	}

	band := Band(req.Rating)
	p.byBand[band] = dropIdentity(p.byBand[band], identity)
	if len(p.byBand[band]) == 0 {
		delete(p.byBand, band)
	}

	return req, nil
}

// Snapshot returns the pooled requests in arrival order without mutating the
// pool. The returned slice is the caller's to keep; the engine works on this
// stable view.
func (p *Pool) Snapshot() []arena.ParticipantRequest {
	out := make([]arena.ParticipantRequest, len(p.ordered))
	copy(out, p.ordered)
	return out
}

// InBucket returns the pooled requests sharing the given region and mode, in
// arrival order.
func (p *Pool) InBucket(region, mode string) []arena.ParticipantRequest {
	ids := p.byBucket[BucketKey{Region: region, Mode: mode}]
	out := make([]arena.ParticipantRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.ordered[p.byIdentity[id]])
	}
	return out
}

// InBand returns the pooled requests whose rating falls into the same
// skill-band slot as the given rating, in arrival order.
func (p *Pool) InBand(rating float64) []arena.ParticipantRequest {
	ids := p.byBand[Band(rating)]
	out := make([]arena.ParticipantRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.ordered[p.byIdentity[id]])
	}
	return out
}

// Band maps a rating to its skill-band index slot. Floor division keeps
// every band the same width and bands below zero distinct from band 0.
func Band(rating float64) int {
	return int(math.Floor(rating / BandWidth))
}

func dropIdentity(ids []string, identity string) []string {
	for i, v := range ids {
		if v == identity {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

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

package pool

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

func request(id string, rating float64, region, mode string, seq uint64) arena.ParticipantRequest {
	return arena.ParticipantRequest{
		Identity: id,
		Rating:   rating,
		Region:   region,
		Mode:     mode,
		Sequence: seq,
	}
}

func TestInsertDuplicateIdentity(t *testing.T) {
	require := require.New(t)

	p := New()
	require.NoError(p.Insert(request("a", 1000, "EU", "1v1", 0)))

	err := p.Insert(request("a", 1200, "NA", "1v1", 1))
	require.Error(err)
	require.True(errors.Is(err, arena.ErrDuplicateIdentity))
	require.Equal(1, p.Len())
}

func TestRemoveNotFound(t *testing.T) {
	require := require.New(t)

	p := New()
	_, err := p.Remove("missing")
	require.Error(err)
	require.True(errors.Is(err, arena.ErrNotFound))
}

func TestSnapshotPreservesArrivalOrder(t *testing.T) {
	require := require.New(t)

	p := New()
	require.NoError(p.Insert(request("c", 1000, "EU", "1v1", 0)))
	require.NoError(p.Insert(request("a", 1100, "EU", "1v1", 1)))
	require.NoError(p.Insert(request("b", 1200, "NA", "2v2", 2)))

	snap := p.Snapshot()
	require.Len(snap, 3)
	require.Equal("c", snap[0].Identity)
	require.Equal("a", snap[1].Identity)
	require.Equal("b", snap[2].Identity)

	// Mutating after a snapshot must not change the snapshot.
	_, err := p.Remove("a")
	require.NoError(err)
	require.Equal("a", snap[1].Identity)
	require.Equal(2, p.Len())
}

func TestRemoveKeepsOrderAndIndices(t *testing.T) {
	require := require.New(t)

	p := New()
	require.NoError(p.Insert(request("a", 1000, "EU", "1v1", 0)))
	require.NoError(p.Insert(request("b", 1010, "EU", "1v1", 1)))
	require.NoError(p.Insert(request("c", 1020, "EU", "1v1", 2)))

	removed, err := p.Remove("b")
	require.NoError(err)
	require.Equal("b", removed.Identity)

	snap := p.Snapshot()
	require.Equal([]string{"a", "c"}, []string{snap[0].Identity, snap[1].Identity})

	bucket := p.InBucket("EU", "1v1")
	require.Len(bucket, 2)
	require.Equal("a", bucket[0].Identity)
	require.Equal("c", bucket[1].Identity)

	// b can re-enter once removed.
	require.NoError(p.Insert(request("b", 1010, "EU", "1v1", 3)))
	require.Equal(3, p.Len())
}

func TestBucketIndex(t *testing.T) {
	require := require.New(t)

	p := New()
	require.NoError(p.Insert(request("a", 1000, "EU", "1v1", 0)))
	require.NoError(p.Insert(request("b", 1000, "NA", "1v1", 1)))
	require.NoError(p.Insert(request("c", 1000, "EU", "2v2", 2)))
	require.NoError(p.Insert(request("d", 1000, "EU", "1v1", 3)))

	bucket := p.InBucket("EU", "1v1")
	require.Len(bucket, 2)
	require.Equal("a", bucket[0].Identity)
	require.Equal("d", bucket[1].Identity)

	require.Empty(p.InBucket("SA", "1v1"))
}

func TestBandIndex(t *testing.T) {
	require := require.New(t)

	p := New()
	require.NoError(p.Insert(request("a", 1000, "EU", "1v1", 0)))
	require.NoError(p.Insert(request("b", 1099, "EU", "1v1", 1)))
	require.NoError(p.Insert(request("c", 1100, "EU", "1v1", 2)))

	band := p.InBand(1050)
	require.Len(band, 2)
	require.Equal("a", band[0].Identity)
	require.Equal("b", band[1].Identity)
}

func TestBandFloors(t *testing.T) {
	require := require.New(t)

	require.Equal(0, Band(0))
	require.Equal(0, Band(99))
	require.Equal(1, Band(100))
	require.Equal(-1, Band(-1))
	require.Equal(-1, Band(-100))
	require.Equal(-2, Band(-101))

	// Ratings either side of zero never share a band.
	p := New()
	require.NoError(p.Insert(request("neg", -50, "EU", "1v1", 0)))
	require.NoError(p.Insert(request("pos", 50, "EU", "1v1", 1)))
	require.Len(p.InBand(-50), 1)
	require.Equal("neg", p.InBand(-50)[0].Identity)
	require.Len(p.InBand(50), 1)
	require.Equal("pos", p.InBand(50)[0].Identity)
}

func TestNextSequence(t *testing.T) {
	require := require.New(t)

	p := New()
	require.Equal(uint64(0), p.NextSequence())

	require.NoError(p.Insert(request("a", 1000, "EU", "1v1", 4)))
	require.NoError(p.Insert(request("b", 1000, "EU", "1v1", 9)))
	require.Equal(uint64(10), p.NextSequence())
}

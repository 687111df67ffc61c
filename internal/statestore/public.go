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

// Package statestore persists the harness-side state around the pure
// matchmaking core: the pending job queue, published outcomes, and the
// residual pool carried between rounds. The core itself holds no state
// across invocations; everything here belongs to the surrounding worker.
package statestore

import (
	"context"

	"github.com/arena-imperium/arena-matchmaking-function/internal/config"
	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

// Service is a generic interface for talking to a storage backend.
type Service interface {
	// HealthCheck indicates if the database is reachable.
	HealthCheck(ctx context.Context) error

	// NextJob pops the oldest pending job payload from the queue. It returns
	// (nil, nil) when the queue is empty.
	NextJob(ctx context.Context) ([]byte, error)

	// EnqueueJob appends a job payload to the pending queue.
	EnqueueJob(ctx context.Context, payload []byte) error

	// PublishOutcome stores the canonical outcome bytes for the job and
	// announces completion to the signing layer.
	PublishOutcome(ctx context.Context, jobID string, payload []byte) error

	// GetOutcome returns the published outcome bytes for the job. This
	// method fails with arena.ErrNotFound if the job has no outcome.
	GetOutcome(ctx context.Context, jobID string) ([]byte, error)

	// GetResidual returns the residual pool carried over for the arena, in
	// arrival order. An arena with no residual yields an empty slice.
	GetResidual(ctx context.Context, arenaID string) ([]arena.ParticipantRequest, error)

	// CommitPass atomically publishes the job's canonical outcome and
	// replaces the arena's residual pool. The two writes land together so a
	// published outcome is never paired with a stale residual.
	CommitPass(ctx context.Context, jobID, arenaID string, payload []byte, residual []arena.ParticipantRequest) error

	// WithResidualLock runs f while holding the arena's residual mutex, so
	// concurrent workers never interleave one round's read-modify-write.
	WithResidualLock(ctx context.Context, arenaID string, f func() error) error

	// Close closes the connection to the underlying storage.
	Close() error
}

// New creates a Service based on the configuration.
func New(cfg config.View) Service {
	return newRedis(cfg)
}

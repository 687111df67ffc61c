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

package statestore

import (
	"context"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"

	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

const (
	pendingJobs   = "pending_jobs"
	completedJobs = "completed_jobs"
	outcomePrefix = "outcome:"
)

// EnqueueJob appends a job payload to the pending queue.
func (rb *redisBackend) EnqueueJob(ctx context.Context, payload []byte) error {
	redisConn, err := rb.connect(ctx)
	if err != nil {
		return err
	}
	defer handleConnectionClose(&redisConn)

	_, err = redisConn.Do("RPUSH", pendingJobs, payload)
	if err != nil {
		return errors.Wrap(err, "failed to enqueue job payload")
	}

	return nil
}

// NextJob pops the oldest pending job payload. Returns (nil, nil) when the
// queue is empty; the worker polls on its configured interval.
func (rb *redisBackend) NextJob(ctx context.Context) ([]byte, error) {
	redisConn, err := rb.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer handleConnectionClose(&redisConn)

	payload, err := redis.Bytes(redisConn.Do("LPOP", pendingJobs))
	if err != nil {
		if err == redis.ErrNil {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to pop pending job")
	}

	return payload, nil
}

// PublishOutcome stores the canonical outcome bytes for the job and pushes
// the job id onto the completed list the signing layer consumes.
func (rb *redisBackend) PublishOutcome(ctx context.Context, jobID string, payload []byte) error {
	redisConn, err := rb.connect(ctx)
	if err != nil {
		return err
	}
	defer handleConnectionClose(&redisConn)

	err = redisConn.Send("MULTI")
	if err != nil {
		return errors.Wrapf(err, "failed to publish outcome for job %s", jobID)
	}
	err = redisConn.Send("SET", outcomePrefix+jobID, payload)
	if err != nil {
		return errors.Wrapf(err, "failed to publish outcome for job %s", jobID)
	}
	err = redisConn.Send("RPUSH", completedJobs, jobID)
	if err != nil {
		return errors.Wrapf(err, "failed to publish outcome for job %s", jobID)
	}
	_, err = redisConn.Do("EXEC")
	if err != nil {
		return errors.Wrapf(err, "failed to publish outcome for job %s", jobID)
	}

	return nil
}

// GetOutcome returns the published outcome bytes for the job.
func (rb *redisBackend) GetOutcome(ctx context.Context, jobID string) ([]byte, error) {
	redisConn, err := rb.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer handleConnectionClose(&redisConn)

	payload, err := redis.Bytes(redisConn.Do("GET", outcomePrefix+jobID))
	if err != nil {
		if err == redis.ErrNil {
			return nil, arena.Errorf(arena.ErrNotFound, "no outcome for job %s", jobID)
		}
		return nil, errors.Wrapf(err, "failed to get outcome for job %s", jobID)
	}

	return payload, nil
}

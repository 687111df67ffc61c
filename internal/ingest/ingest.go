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

// Package ingest decodes oracle job payloads into matchmaking input. The
// request transport and its outer envelope belong to the oracle runner; by
// the time bytes reach this package they are the opaque container params of
// one job.
package ingest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arena-imperium/arena-matchmaking-function/internal/pool"
	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "arena_mmf",
		"component": "ingest",
	})
)

// Job is one decoded matchmaking job: the rule configuration for the pass
// plus the new participant requests to admit on top of the carried-over
// residual.
type Job struct {
	// ID correlates the job with its queue entry and published outcome.
	ID string `json:"jobId"`

	// Arena selects the residual pool the job operates on.
	Arena string `json:"arena"`

	Rules arena.Rules `json:"rules"`

	Participants []arena.ParticipantRequest `json:"participants"`
}

// Decode parses a job payload far enough to identify it: the envelope is
// unwrapped, the JSON unmarshaled, and the jobId and arena required. Payloads
// arrive either as plain JSON or, the way oracle container params are
// delivered, base64-wrapped JSON. Sequence numbers supplied by the request
// are never trusted; admission assigns them. Content checks live in Validate
// so a job that fails them can still be acknowledged under its id.
func Decode(raw []byte) (*Job, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty job payload")
	}

	if raw[0] != '{' {
		decoded, err := base64.StdEncoding.DecodeString(string(raw))
		if err != nil {
			return nil, errors.Wrap(err, "job payload is neither JSON nor base64")
		}
		raw = decoded
	}

	job := &Job{}
	if err := json.Unmarshal(raw, job); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal job payload")
	}

	if job.ID == "" {
		return nil, errors.New("job payload has no jobId")
	}
	if job.Arena == "" {
		return nil, errors.New("job payload has no arena")
	}
	for i := range job.Participants {
		job.Participants[i].Sequence = 0
	}

	return job, nil
}

// Validate checks the decoded job's content: rule configuration and
// participant identities. A job failing Validate is rejected, but its id is
// already known, so the rejection can be published as an error outcome.
func (j *Job) Validate() error {
	if err := j.Rules.Validate(); err != nil {
		return errors.Wrapf(err, "job %s has invalid rules", j.ID)
	}
	for i := range j.Participants {
		if j.Participants[i].Identity == "" {
			return errors.Errorf("job %s participant %d has empty identity", j.ID, i)
		}
	}
	return nil
}

// Admit inserts the job's participants into the pool in payload order,
// assigning arrival sequence numbers after the pool's current maximum.
// Requests whose identity is already pooled are skipped: the participant is
// already waiting, and admitting them twice would double-book. Returns the
// number of admitted and skipped requests.
func Admit(p *pool.Pool, job *Job) (admitted, skipped int) {
	seq := p.NextSequence()
	for _, req := range job.Participants {
		req.Sequence = seq
		if err := p.Insert(req); err != nil {
			logger.WithFields(logrus.Fields{
				"jobId":    job.ID,
				"identity": req.Identity,
				"error":    err.Error(),
			}).Warning("skipping participant request")
			skipped++
			continue
		}
		seq++
		admitted++
	}
	return admitted, skipped
}

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

// Package function runs the matchmaking worker: it consumes pending jobs
// from the queue, executes one deterministic pairing pass per job, and
// publishes the canonical outcome for the signing layer. Everything the
// attested result depends on lives in the pure core packages; this package
// only moves data in and out.
package function

import (
	"context"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/arena-imperium/arena-matchmaking-function/internal/appmain"
	"github.com/arena-imperium/arena-matchmaking-function/internal/config"
	"github.com/arena-imperium/arena-matchmaking-function/internal/eligibility"
	"github.com/arena-imperium/arena-matchmaking-function/internal/engine"
	"github.com/arena-imperium/arena-matchmaking-function/internal/ingest"
	"github.com/arena-imperium/arena-matchmaking-function/internal/outcome"
	"github.com/arena-imperium/arena-matchmaking-function/internal/pool"
	"github.com/arena-imperium/arena-matchmaking-function/internal/statestore"
	"github.com/arena-imperium/arena-matchmaking-function/internal/telemetry"
	"github.com/arena-imperium/arena-matchmaking-function/pkg/arena"
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "arena_mmf",
		"component": "app.function",
	})

	mPasses         = telemetry.Counter("function/passes", "matchmaking passes executed")
	mDecodeFailures = telemetry.Counter("function/decode_failures", "job payloads rejected at decode")
	mMatchesPerPass = telemetry.HistogramWithBounds("function/matches_per_pass", "matches formed per pass", "1", []float64{0, 1, 2, 4, 8, 16, 32, 64, 128})
	mPassLatencyMs  = telemetry.HistogramWithBounds("function/pass_latency", "per-pass latency", "ms", telemetry.HistogramBounds)
	mResidualSize   = telemetry.Gauge("function/residual_size", "size of the residual pool after the last pass")
	mStarvationAge  = telemetry.Gauge("function/starvation_age_passes", "passes the longest-waiting residual participant has been carried over")
)

// BindService creates the worker and binds it to the running application.
func BindService(p *appmain.Params, b *appmain.Bindings) error {
	store := statestore.New(p.Config())
	s := New(p.Config(), store)

	b.AddHealthCheckFunc(store.HealthCheck)
	b.AddCloserErr(store.Close)
	b.AddDaemon(s.Run)

	return nil
}

// Service is the matchmaking worker.
type Service struct {
	cfg   config.View
	store statestore.Service

	// carried tracks, per arena, how many consecutive passes each residual
	// participant has been carried over. Monitoring state only: it never
	// feeds back into pairing.
	carried map[string]map[string]int
}

// New creates a worker on top of the given statestore.
func New(cfg config.View, store statestore.Service) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		carried: map[string]map[string]int{},
	}
}

// Run polls the pending job queue until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	pollInterval := s.cfg.GetDuration("function.pollInterval")
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	logger.WithFields(logrus.Fields{
		"pollInterval": pollInterval,
	}).Info("matchmaking worker started")

	for {
		payload, err := s.store.NextJob(ctx)
		if err != nil {
			logger.WithError(err).Error("failed to poll for pending jobs")
		} else if payload != nil {
			s.processJob(ctx, payload)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// processJob executes one pairing pass for one job. Rejected jobs with a
// known id are acknowledged with an error outcome; payloads with no
// recoverable id are logged and dropped. Neither takes the worker down.
func (s *Service) processJob(ctx context.Context, payload []byte) {
	runID := xid.New().String()
	passLogger := logger.WithFields(logrus.Fields{
		"runId": runID,
	})

	job, err := ingest.Decode(payload)
	if err != nil {
		// No recoverable job id, so there is nothing to acknowledge under.
		telemetry.RecordUnitMeasurement(ctx, mDecodeFailures)
		passLogger.WithError(err).Error("rejecting unidentifiable job payload")
		return
	}
	passLogger = passLogger.WithFields(logrus.Fields{
		"jobId": job.ID,
		"arena": job.Arena,
	})

	if err := job.Validate(); err != nil {
		telemetry.RecordUnitMeasurement(ctx, mDecodeFailures)
		passLogger.WithError(err).Error("rejecting job")
		s.rejectJob(ctx, job.ID, err, passLogger)
		return
	}

	start := time.Now()
	err = s.store.WithResidualLock(ctx, job.Arena, func() error {
		return s.runPass(ctx, job, passLogger)
	})
	if err != nil {
		passLogger.WithError(err).Error("matchmaking pass failed")
		return
	}

	telemetry.RecordUnitMeasurement(ctx, mPasses)
	telemetry.RecordNUnitMeasurement(ctx, mPassLatencyMs, time.Since(start).Milliseconds())
}

// rejectJob publishes an error outcome under the job id so the requester
// receives a terminal signal instead of polling for a result that will
// never arrive.
func (s *Service) rejectJob(ctx context.Context, jobID string, cause error, passLogger *logrus.Entry) {
	payload, err := outcome.CanonicalError(cause)
	if err != nil {
		passLogger.WithError(err).Error("failed to serialize the rejection")
		return
	}
	if err := s.store.PublishOutcome(ctx, jobID, payload); err != nil {
		passLogger.WithError(err).Error("failed to publish the rejection")
	}
}

func (s *Service) runPass(ctx context.Context, job *ingest.Job, passLogger *logrus.Entry) error {
	residual, err := s.store.GetResidual(ctx, job.Arena)
	if err != nil {
		return err
	}

	p := pool.New()
	for _, req := range residual {
		if insertErr := p.Insert(req); insertErr != nil {
			// A corrupt carried-over entry must not wedge the arena forever.
			passLogger.WithError(insertErr).WithFields(logrus.Fields{
				"identity": req.Identity,
			}).Warning("dropping carried-over participant")
		}
	}
	admitted, skipped := ingest.Admit(p, job)

	filter, err := eligibility.New(job.Rules)
	if err != nil {
		return err
	}

	proposals, residualOut := engine.New(filter).Run(p.Snapshot())
	result := outcome.Build(proposals, residualOut)

	canonical, err := outcome.Canonical(result)
	if err != nil {
		return err
	}
	digest, err := outcome.Digest(result)
	if err != nil {
		return err
	}

	// One atomic commit: an outcome must never land without the residual
	// that excludes its matched participants.
	if err := s.store.CommitPass(ctx, job.ID, job.Arena, canonical, residualOut); err != nil {
		return err
	}

	starvationAge := s.trackStarvation(job.Arena, residualOut, passLogger)

	telemetry.RecordNUnitMeasurement(ctx, mMatchesPerPass, int64(len(result.Matches)))
	telemetry.SetGauge(ctx, mResidualSize, int64(len(residualOut)))
	telemetry.SetGauge(ctx, mStarvationAge, int64(starvationAge))

	passLogger.WithFields(logrus.Fields{
		"admitted": admitted,
		"skipped":  skipped,
		"matches":  len(result.Matches),
		"residual": len(residualOut),
		"digest":   digest,
	}).Info("matchmaking pass completed")

	return nil
}

// trackStarvation updates the per-arena carry-over counters and returns the
// age in passes of the longest-waiting residual participant.
func (s *Service) trackStarvation(arenaID string, residual []arena.ParticipantRequest, passLogger *logrus.Entry) int {
	warnAfter := s.cfg.GetInt("matchmaking.starvationWarnPasses")

	previous := s.carried[arenaID]
	current := make(map[string]int, len(residual))
	oldest := 0
	for _, req := range residual {
		age := previous[req.Identity] + 1
		current[req.Identity] = age
		if age > oldest {
			oldest = age
		}
		if warnAfter > 0 && age == warnAfter {
			passLogger.WithFields(logrus.Fields{
				"identity": req.Identity,
				"passes":   age,
			}).Warning("participant is starving in the residual pool")
		}
	}
	s.carried[arenaID] = current

	return oldest
}

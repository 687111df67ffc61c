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

// Package telemetry exports the worker's OpenCensus measures through the
// Prometheus exporter. A single-pass batch function has no spans worth
// tracing, so only metrics are wired.
package telemetry

import (
	"net/http"
	"time"

	ocPrometheus "contrib.go.opencensus.io/exporter/prometheus"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/stats/view"

	"github.com/arena-imperium/arena-matchmaking-function/internal/config"
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "arena_mmf",
		"component": "telemetry",
	})
)

// Setup configures metric reporting and binds the /metrics handler to the
// mux. It returns a closer undoing the exporter registration.
func Setup(mux *http.ServeMux, cfg config.View) (func(), error) {
	noop := func() {}

	reportingPeriod := cfg.GetDuration("telemetry.reportingPeriod")
	if reportingPeriod <= 0 {
		reportingPeriod = time.Minute
	}
	view.SetReportingPeriod(reportingPeriod)

	if !cfg.GetBool("telemetry.prometheus.enable") {
		logger.Info("Prometheus Metrics: Disabled")
		return noop, nil
	}

	endpoint := cfg.GetString("telemetry.prometheus.endpoint")
	logger.WithFields(logrus.Fields{
		"endpoint":        endpoint,
		"reportingPeriod": reportingPeriod,
	}).Info("Prometheus Metrics: ENABLED")

	registry := prometheus.NewRegistry()
	if err := registry.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{})); err != nil {
		return noop, errors.Wrap(err, "Failed to register prometheus process collector")
	}
	if err := registry.Register(prometheus.NewGoCollector()); err != nil {
		return noop, errors.Wrap(err, "Failed to register prometheus go collector")
	}

	promExporter, err := ocPrometheus.NewExporter(
		ocPrometheus.Options{
			Namespace: "",
			Registry:  registry,
		})
	if err != nil {
		return noop, errors.Wrap(err, "Failed to initialize OpenCensus exporter to Prometheus")
	}

	view.RegisterExporter(promExporter)
	mux.Handle(endpoint, promExporter)

	return func() {
		view.UnregisterExporter(promExporter)
	}, nil
}

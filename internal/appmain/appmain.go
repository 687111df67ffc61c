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

// Package appmain contains the common application initialization code for
// the matchmaking worker.
package appmain

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arena-imperium/arena-matchmaking-function/internal/config"
	"github.com/arena-imperium/arena-matchmaking-function/internal/logging"
	"github.com/arena-imperium/arena-matchmaking-function/internal/telemetry"
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "arena_mmf",
		"component": "app.main",
	})
)

// RunApplication starts and runs the given application until it is signaled
// to stop. For use in main functions to run the full application.
func RunApplication(serverName string, bindService Bind) {
	c := make(chan os.Signal, 1)
	// SIGTERM is signaled by k8s when it wants a pod to stop.
	signal.Notify(c, syscall.SIGTERM, syscall.SIGINT)

	a, err := StartApplication(serverName, bindService, config.Read)
	if err != nil {
		logger.Fatal(err)
	}

	<-c
	err = a.Stop()
	if err != nil {
		logger.Fatal(err)
	}
	logger.Info("Application stopped successfully.")
}

// Bind is a function which binds an application's services to a starting
// application.
type Bind func(p *Params, b *Bindings) error

// Params are inputs to starting an application.
type Params struct {
	config      config.View
	serviceName string
}

// Config provides the configuration for the application.
func (p *Params) Config() config.View {
	return p.config
}

// ServiceName is the name of the currently running binary.
func (p *Params) ServiceName() string {
	return p.serviceName
}

// Bindings allows applications to bind various functions to the running
// application.
type Bindings struct {
	a            *App
	mux          *http.ServeMux
	healthChecks []func(context.Context) error
}

// AddHealthCheckFunc allows an application to check if it is healthy, and
// contribute to the overall server health.
func (b *Bindings) AddHealthCheckFunc(f func(context.Context) error) {
	b.healthChecks = append(b.healthChecks, f)
}

// AddDaemon starts f when the application starts. The context is canceled
// when the application begins to stop.
func (b *Bindings) AddDaemon(f func(ctx context.Context) error) {
	b.a.daemons = append(b.a.daemons, f)
}

// TelemetryHandle binds a handler on the telemetry http endpoint.
func (b *Bindings) TelemetryHandle(pattern string, handler http.Handler) {
	b.mux.Handle(pattern, handler)
}

// TelemetryHandleFunc binds a handler function on the telemetry http endpoint.
func (b *Bindings) TelemetryHandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	b.mux.HandleFunc(pattern, handler)
}

// AddCloser registers a function to be called when the application stops.
func (b *Bindings) AddCloser(c func()) {
	b.a.closers = append(b.a.closers, func() error {
		c()
		return nil
	})
}

// AddCloserErr registers a function to be called when the application stops.
func (b *Bindings) AddCloserErr(c func() error) {
	b.a.closers = append(b.a.closers, c)
}

// App is a running application.
type App struct {
	closers []func() error
	daemons []func(ctx context.Context) error
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// StartApplication provides more control over an application than
// RunApplication. It is for running in memory tests against your app.
func StartApplication(serverName string, bindService Bind, getCfg func() (config.View, error)) (*App, error) {
	a := &App{}

	cfg, err := getCfg()
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Fatalf("cannot read configuration.")
	}
	logging.ConfigureLogging(cfg)

	p := &Params{
		config:      cfg,
		serviceName: serverName,
	}
	b := &Bindings{
		a:   a,
		mux: http.NewServeMux(),
	}

	closeTelemetry, err := telemetry.Setup(b.mux, cfg)
	if err != nil {
		a.Stop()
		return nil, err
	}
	b.AddCloser(closeTelemetry)

	err = bindService(p, b)
	if err != nil {
		a.Stop()
		return nil, err
	}

	b.mux.HandleFunc("/healthz", newHealthProbe(b.healthChecks))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.GetInt("api."+serverName+".httpport")),
		Handler: b.mux,
	}
	go func() {
		serveErr := srv.ListenAndServe()
		if serveErr != nil && serveErr != http.ErrServerClosed {
			logger.WithError(serveErr).Error("telemetry http server exited")
		}
	}()
	b.AddCloserErr(func() error {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	for _, d := range a.daemons {
		d := d
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if runErr := d(ctx); runErr != nil && runErr != context.Canceled {
				logger.WithError(runErr).Error("daemon exited with error")
			}
		}()
	}

	return a, nil
}

// Stop shuts the application down.
func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	// Use closers in reverse order: Since dependencies are created before
	// their dependants, this helps ensure no dependencies are closed
	// unexpectedly.
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err := a.closers[i]()
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newHealthProbe(checks []func(context.Context) error) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check(ctx); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		fmt.Fprint(w, "ok")
	}
}

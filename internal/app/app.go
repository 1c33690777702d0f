// Package app wires configuration, storage, the hunt session and the HTTP
// surface into one server lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"huntd/internal/sweep"
	"huntd/pkg/activity"
	"huntd/pkg/config"
	"huntd/pkg/hunt"
	"huntd/pkg/keys"
	"huntd/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	seq     *keys.Sequence
	session *hunt.Session
	queue   *activity.Queue

	srv *http.Server
}

// New initializes resources that do not require a running context: config
// validation, the key catalog and the store. It does not start the sweep
// or the HTTP server; call Run to start those and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	seq, err := keys.New(eff.Config.Hunt.Keys)
	if err != nil {
		return nil, fmt.Errorf("invalid hunt keys: %w", err)
	}

	// open store
	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}
	store.SetFirstOrdinal(seq.First())

	start, end := eff.Config.Hunt.Window()
	queue := activity.NewQueue(eff.Config.Activity.QueueCapacity)
	session := hunt.NewSession(seq, hunt.Window{Start: start, End: end}, activity.NewRecorder(queue))

	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		seq:       seq,
		session:   session,
		queue:     queue,
	}
	return a, nil
}

// Run starts the activity worker, the sweep scheduler and the HTTP
// server, and blocks until ctx is canceled or a fatal server error
// occurs.
func (a *App) Run(ctx context.Context) error {
	// The worker outlives ctx: Close drains the queue by closing it,
	// and the channel close is what ends the worker.
	go activity.RunWorker(context.Background(), a.queue, activity.LogSink{})

	sweepCancel, err := sweep.Start(ctx, a.eff, a.seq.First())
	if err != nil {
		return err
	}
	defer sweepCancel()

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases resources in shutdown order: stop accepting requests,
// flush the activity queue, then close the store.
func (a *App) Close() error {
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(ctx)
	}
	if a.queue != nil {
		a.queue.Close()
	}
	return store.Close()
}

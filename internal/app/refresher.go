package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/ladder/internal/progress"
	"github.com/five82/ladder/internal/reconcile"
	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/state"
	"github.com/five82/ladder/internal/stats"
)

// Refresher reloads topics and progress from the backend whenever it is
// triggered. It owns no timer unless an interval is configured.
type Refresher struct {
	backend  sheet.Backend
	ctrl     *reconcile.Controller
	store    *state.Store
	log      *zap.Logger
	interval time.Duration
	trigger  chan struct{}
}

// NewRefresher wires a refresher. interval <= 0 disables timed refreshes.
func NewRefresher(backend sheet.Backend, ctrl *reconcile.Controller, store *state.Store, log *zap.Logger, interval time.Duration) *Refresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{
		backend:  backend,
		ctrl:     ctrl,
		store:    store,
		log:      log,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a refresh without blocking. Requests made while one is
// already queued collapse into it.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// OnChange adapts Trigger to the controller's observer signature.
func (r *Refresher) OnChange(reconcile.Change) {
	r.Trigger()
}

// Start launches the background loop. It returns immediately.
func (r *Refresher) Start(ctx context.Context) {
	go func() {
		var tick <-chan time.Time
		if r.interval > 0 {
			ticker := time.NewTicker(r.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.trigger:
			case <-tick:
			}
			_ = r.Refresh(ctx)
		}
	}()
}

// Refresh fetches topics, progress and remote stats concurrently, then
// replaces the progress store and publishes a new snapshot. Failures keep the
// previous data and are recorded on the snapshot.
func (r *Refresher) Refresh(ctx context.Context) error {
	var (
		topics  []sheet.Topic
		records []sheet.ProgressRecord
		remote  *sheet.Stats
	)

	// Toggles confirmed after this point may be missing from the fetch.
	since := r.ctrl.Generation()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if topics, err = r.backend.FetchAllTopics(gctx); err != nil {
			return fmt.Errorf("fetch topics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if records, err = r.backend.FetchProgress(gctx); err != nil {
			return fmt.Errorf("fetch progress: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Precomputed stats are best effort.
		s, err := r.backend.FetchProgressStats(gctx)
		if err != nil {
			r.log.Debug("progress stats unavailable", zap.Error(err))
			return nil
		}
		remote = s
		return nil
	})

	if err := g.Wait(); err != nil {
		r.store.Update(state.Update{}, err)
		r.log.Warn("refresh failed", zap.Error(err))
		return err
	}

	r.ctrl.SetProblems(topics...)
	r.ctrl.ReloadSince(since, progress.FromSheet(records))

	local := stats.GlobalStats(topics, r.ctrl.Store().IsCompleted)
	update := state.Update{Topics: topics, Global: local, GlobalSource: state.StatsLocal}
	if remote != nil && remote.Total > 0 {
		if stats.Disagrees(remote, local) {
			r.log.Debug("remote stats disagree with local figures",
				zap.Int("remote_total", remote.Total),
				zap.Int("remote_completed", remote.Completed),
				zap.Int("local_total", local.Total),
				zap.Int("local_completed", local.Completed),
			)
		}
		update.Global = stats.Resolve(remote, local)
		update.GlobalSource = state.StatsRemote
	}
	r.store.Update(update, nil)

	r.log.Debug("refresh complete", zap.Int("topics", len(topics)), zap.Int("records", len(records)))
	return nil
}

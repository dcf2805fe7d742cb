package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/ladder/internal/config"
	"github.com/five82/ladder/internal/progress"
	"github.com/five82/ladder/internal/reconcile"
	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/state"
)

// Session bundles the per-run objects: one progress store, one controller and
// one snapshot store per process, passed explicitly to whoever needs them.
type Session struct {
	Backend    sheet.Backend
	Progress   *progress.Store
	Controller *reconcile.Controller
	State      *state.Store
	Refresher  *Refresher
	Log        *zap.Logger

	unsubscribe func()
}

// NewSession wires a session around backend. Confirmed toggles trigger a
// refresh so derived figures catch up.
func NewSession(backend sheet.Backend, cfg config.Config, log *zap.Logger) (*Session, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	store := &progress.Store{}
	ctrl, err := reconcile.New(store, backend,
		reconcile.WithTimeout(cfg.RequestTimeout),
		reconcile.WithLogger(log.Named("reconcile")),
	)
	if err != nil {
		return nil, fmt.Errorf("init controller: %w", err)
	}

	snapshots := &state.Store{}
	refresher := NewRefresher(backend, ctrl, snapshots, log.Named("refresh"), cfg.RefreshInterval)

	return &Session{
		Backend:     backend,
		Progress:    store,
		Controller:  ctrl,
		State:       snapshots,
		Refresher:   refresher,
		Log:         log,
		unsubscribe: ctrl.Subscribe(refresher.OnChange),
	}, nil
}

// Close detaches the refresher from the controller.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

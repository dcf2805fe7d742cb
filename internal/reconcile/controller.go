// Package reconcile drives optimistic completion toggles against the sheet
// backend.
//
// A toggle moves a problem from Idle to Pending: the new value is written to
// the progress store immediately, the backend is called, and the problem
// returns to Idle either keeping the value (success) or restoring the
// pre-toggle value (failure). Problems are independent of one another; a
// second toggle on a Pending problem is rejected with ErrOperationInProgress.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/ladder/internal/progress"
	"github.com/five82/ladder/internal/sheet"
)

// Poster is the remote half of a toggle.
type Poster interface {
	PostProgress(ctx context.Context, problemID string, completed bool) error
}

// Change is broadcast after a toggle is confirmed by the backend.
type Change struct {
	ProblemID string
	Completed bool
}

// Observer receives confirmed changes. Observers run synchronously on the
// toggling goroutine and must not block.
type Observer func(Change)

const defaultTimeout = 5 * time.Second

// pending holds the rollback snapshot of an in-flight toggle.
type pending struct {
	previous     bool
	wasTemporary bool
	target       bool
}

// confirmed is a toggle the backend accepted, stamped with the generation it
// produced.
type confirmed struct {
	generation uint64
	completed  bool
}

// Controller owns the in-flight set for one session.
type Controller struct {
	store   *progress.Store
	remote  Poster
	log     *zap.Logger
	timeout time.Duration

	mu        sync.Mutex
	inFlight  map[string]*pending
	known     map[string]struct{}
	observers map[int]Observer
	nextObsID int

	generation uint64
	confirmed  map[string]confirmed
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout bounds each remote update so a hung request cannot leave a
// problem pending forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Controller over store and remote.
func New(store *progress.Store, remote Poster, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("progress store is nil")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote is nil")
	}
	c := &Controller{
		store:     store,
		remote:    remote,
		log:       zap.NewNop(),
		timeout:   defaultTimeout,
		inFlight:  make(map[string]*pending),
		observers: make(map[int]Observer),
		confirmed: make(map[string]confirmed),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Store returns the progress store the controller mutates.
func (c *Controller) Store() *progress.Store {
	return c.store
}

// SetProblems installs the set of problem ids that may be toggled. Until it is
// called every id is accepted.
func (c *Controller) SetProblems(topics ...sheet.Topic) {
	known := make(map[string]struct{})
	for _, t := range topics {
		for _, p := range t.Problems {
			known[p.ID] = struct{}{}
		}
	}

	c.mu.Lock()
	c.known = known
	c.mu.Unlock()
}

// Generation returns a counter bumped by every confirmed toggle. Read it
// before fetching progress and hand it to ReloadSince.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Reload replaces the store contents with a fetch that reflects every toggle
// confirmed so far. Pending toggles keep their optimistic value and have their
// rollback snapshot rebased onto the reloaded record.
func (c *Controller) Reload(records []progress.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloadLocked(records, c.generation)
}

// ReloadSince is Reload for a fetch started at generation since. Toggles
// confirmed after that point are missing from records and are re-applied on
// top of them.
func (c *Controller) ReloadSince(since uint64, records []progress.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloadLocked(records, since)
}

func (c *Controller) reloadLocked(records []progress.Record, since uint64) {
	c.store.Load(records)
	for id, change := range c.confirmed {
		if change.generation <= since {
			delete(c.confirmed, id)
			continue
		}
		c.store.ApplyOptimistic(id, change.completed)
	}
	for id, p := range c.inFlight {
		r, ok := c.store.Lookup(id)
		p.previous = ok && r.Completed
		p.wasTemporary = !ok
		c.store.ApplyOptimistic(id, p.target)
	}
}

// Subscribe registers an observer for confirmed changes and returns a func that
// removes it.
func (c *Controller) Subscribe(obs Observer) (unsubscribe func()) {
	if obs == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = obs
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

// InFlight reports whether problemID is Pending.
func (c *Controller) InFlight(problemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[problemID]
	return ok
}

// Pending returns the ids currently in flight, sorted.
func (c *Controller) Pending() []string {
	c.mu.Lock()
	ids := make([]string, 0, len(c.inFlight))
	for id := range c.inFlight {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Toggle flips the completion of problemID and returns the value in effect
// afterwards. On remote failure the store is rolled back and an
// *UpdateFailedError is returned alongside the restored value. A rejected
// toggle returns the current value untouched.
func (c *Controller) Toggle(ctx context.Context, problemID string) (bool, error) {
	target, err := c.begin(problemID)
	if err != nil {
		c.log.Debug("toggle rejected", zap.String("problem_id", problemID), zap.Error(err))
		return c.store.IsCompleted(problemID), err
	}
	c.log.Debug("toggle started", zap.String("problem_id", problemID), zap.Bool("completed", target))

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	err = c.remote.PostProgress(callCtx, problemID, target)
	cancel()

	if err != nil {
		c.fail(problemID)
		c.log.Warn("toggle rolled back",
			zap.String("problem_id", problemID),
			zap.Bool("completed", target),
			zap.Error(err),
		)
		return !target, &UpdateFailedError{ProblemID: problemID, Completed: target, Err: err}
	}

	observers := c.succeed(problemID, target)
	c.log.Info("toggle confirmed", zap.String("problem_id", problemID), zap.Bool("completed", target))
	change := Change{ProblemID: problemID, Completed: target}
	for _, obs := range observers {
		obs(change)
	}
	return target, nil
}

// begin validates the request, snapshots the pre-toggle state and applies the
// optimistic value, all under the controller lock.
func (c *Controller) begin(problemID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.known != nil {
		if _, ok := c.known[problemID]; !ok {
			return false, fmt.Errorf("toggle %q: %w", problemID, ErrUnknownProblem)
		}
	}
	if _, busy := c.inFlight[problemID]; busy {
		return false, fmt.Errorf("toggle %q: %w", problemID, ErrOperationInProgress)
	}

	r, existed := c.store.Lookup(problemID)
	p := &pending{
		previous:     existed && r.Completed,
		wasTemporary: !existed,
	}
	p.target = !p.previous
	c.inFlight[problemID] = p
	c.store.ApplyOptimistic(problemID, p.target)
	return p.target, nil
}

func (c *Controller) fail(problemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.inFlight[problemID]
	if !ok {
		return
	}
	delete(c.inFlight, problemID)
	c.store.Rollback(problemID, p.previous, p.wasTemporary)
}

func (c *Controller) succeed(problemID string, completed bool) []Observer {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inFlight, problemID)
	c.generation++
	c.confirmed[problemID] = confirmed{generation: c.generation, completed: completed}
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Observer, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.observers[id])
	}
	return out
}

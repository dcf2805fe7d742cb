package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/stats"
)

// StatsSource records where the global figures came from.
type StatsSource int

const (
	StatsLocal StatsSource = iota
	StatsRemote
)

func (s StatsSource) String() string {
	if s == StatsRemote {
		return "remote"
	}
	return "local"
}

// Snapshot represents the latest sheet data available to the UI.
type Snapshot struct {
	Topics              []sheet.Topic
	HasData             bool
	Global              stats.Stats
	GlobalSource        StatsSource
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Topic returns the topic with the given id.
func (s Snapshot) Topic(id string) (sheet.Topic, bool) {
	for _, t := range s.Topics {
		if t.ID == id {
			return t, true
		}
	}
	return sheet.Topic{}, false
}

// Update carries the result of one refresh.
type Update struct {
	Topics       []sheet.Topic
	Global       stats.Stats
	GlobalSource StatsSource
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(u Update, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Topics = cloneTopics(u.Topics)
	s.snapshot.Global = u.Global
	s.snapshot.GlobalSource = u.GlobalSource
	s.snapshot.HasData = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Topics = cloneTopics(s.snapshot.Topics)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneTopics(topics []sheet.Topic) []sheet.Topic {
	if len(topics) == 0 {
		return nil
	}
	dup := make([]sheet.Topic, len(topics))
	copy(dup, topics)
	for i := range dup {
		if len(dup[i].Problems) == 0 {
			continue
		}
		problems := make([]sheet.Problem, len(dup[i].Problems))
		copy(problems, dup[i].Problems)
		dup[i].Problems = problems
	}
	return dup
}

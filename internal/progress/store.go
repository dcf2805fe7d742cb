// Package progress holds the session's problem completion records.
package progress

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/ladder/internal/sheet"
)

// RecordKind distinguishes backend-assigned ids from local placeholders.
type RecordKind int

const (
	// Persisted ids were assigned by the backend.
	Persisted RecordKind = iota
	// Temporary ids were minted locally for an optimistic insert.
	Temporary
)

// RecordID identifies a progress record. It is either Persisted or Temporary.
type RecordID struct {
	kind  RecordKind
	value string
}

// PersistedID wraps a backend-assigned record id.
func PersistedID(id string) RecordID {
	return RecordID{kind: Persisted, value: id}
}

// NewTemporaryID mints a fresh local id.
func NewTemporaryID() RecordID {
	return RecordID{kind: Temporary, value: uuid.NewString()}
}

// Kind reports whether the id is Persisted or Temporary.
func (id RecordID) Kind() RecordKind { return id.kind }

// IsTemporary reports whether the id was minted locally.
func (id RecordID) IsTemporary() bool { return id.kind == Temporary }

// Value returns the raw id string.
func (id RecordID) Value() string { return id.value }

func (id RecordID) String() string {
	if id.kind == Temporary {
		return "temp:" + id.value
	}
	return id.value
}

// Record is the completion state of one problem.
type Record struct {
	ID        RecordID
	ProblemID string
	Completed bool
}

// FromSheet converts API records into store records.
func FromSheet(records []sheet.ProgressRecord) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, Record{
			ID:        PersistedID(r.ID),
			ProblemID: r.ProblemID,
			Completed: r.Completed,
		})
	}
	return out
}

// Store maps problem ids to their record. The zero value is ready to use and
// safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

// Load replaces the contents. Duplicate problem ids keep the last record.
func (s *Store) Load(records []Record) {
	next := make(map[string]Record, len(records))
	for _, r := range records {
		next[r.ProblemID] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = next
}

// IsCompleted reports the completion flag, false when no record exists.
func (s *Store) IsCompleted(problemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[problemID].Completed
}

// Lookup returns the record for problemID, if any.
func (s *Store) Lookup(problemID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[problemID]
	return r, ok
}

// ApplyOptimistic overwrites the completed flag, inserting a Temporary record
// when none exists.
func (s *Store) ApplyOptimistic(problemID string, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records == nil {
		s.records = make(map[string]Record)
	}
	if r, ok := s.records[problemID]; ok {
		r.Completed = completed
		s.records[problemID] = r
		return
	}
	s.records[problemID] = Record{
		ID:        NewTemporaryID(),
		ProblemID: problemID,
		Completed: completed,
	}
}

// Rollback undoes an optimistic change: temporary records are removed, others
// get previousCompleted back.
func (s *Store) Rollback(problemID string, previousCompleted, wasTemporary bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wasTemporary {
		delete(s.records, problemID)
		return
	}
	r, ok := s.records[problemID]
	if !ok {
		return
	}
	r.Completed = previousCompleted
	s.records[problemID] = r
}

// Records returns a copy of every record ordered by problem id.
func (s *Store) Records() []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ProblemID < out[j].ProblemID })
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

package review

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSnapshotNotFound indicates a resume snapshot is expired, already
// consumed, or was never created.
var ErrSnapshotNotFound = errors.New("review: resume snapshot not found")

// Snapshot is the state persisted when a run parks at a human gate. It is
// consumed exactly once, by the resume call presenting a matching token.
type Snapshot struct {
	RunID          string         `json:"runId"`
	GateID         string         `json:"gateId"`
	TopicSections  []TopicSection `json:"topicSections"`
	Triage         TriageResult   `json:"triageResult"`
	PreviousEvents []TraceEvent   `json:"previousEvents"`
	ReplanCount    int            `json:"replanCount"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// ResumeStore persists paused-run snapshots between the gate and resume
// calls. Take is an atomic get-and-delete: with concurrent callers on the
// same run id, exactly one succeeds and the rest see ErrSnapshotNotFound.
type ResumeStore interface {
	Save(ctx context.Context, runID string, snap *Snapshot) error
	Take(ctx context.Context, runID string) (*Snapshot, error)
}

// MemoryResumeStore keeps snapshots in a process-local map. Snapshots do
// not survive a restart; that limitation is inherited from the reference
// system and documented rather than fixed here.
type MemoryResumeStore struct {
	mu        sync.Mutex
	snapshots map[string]*Snapshot
}

func NewMemoryResumeStore() *MemoryResumeStore {
	return &MemoryResumeStore{snapshots: make(map[string]*Snapshot)}
}

var _ ResumeStore = (*MemoryResumeStore)(nil)

func (s *MemoryResumeStore) Save(_ context.Context, runID string, snap *Snapshot) error {
	if runID == "" {
		return errors.New("review: run id cannot be empty")
	}
	if snap == nil {
		return errors.New("review: snapshot cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[runID] = snap
	return nil
}

func (s *MemoryResumeStore) Take(_ context.Context, runID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[runID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	delete(s.snapshots, runID)
	return snap, nil
}

// Len reports how many runs are currently parked. Used by metrics.
func (s *MemoryResumeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

package upload

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spothop/media-service/internal/application/service"
	"github.com/spothop/media-service/internal/domain/media"
)

// The video path surfaces failures instead of swallowing them, because a
// spot row created before its media succeeds leaves partial content behind.
// The recovery protocol is a small state machine driven by a human
// decision: retry the upload, drop the video and keep the photos, or stop
// and accept the spot without video.

type RecoveryState string

const (
	StateUploading             RecoveryState = "uploading"
	StateAwaitingUserDecision  RecoveryState = "awaiting_user_decision"
	StateRetrying              RecoveryState = "retrying"
	StateCompleted             RecoveryState = "completed"
	StateAbortedPartialContent RecoveryState = "aborted_with_partial_content"
)

type Decision string

const (
	DecisionRetry Decision = "retry"
	DecisionSkip  Decision = "skip"
	DecisionAbort Decision = "abort"
)

// allowedTransitions maps each state to its legal successors.
var allowedTransitions = map[RecoveryState][]RecoveryState{
	StateUploading:            {StateAwaitingUserDecision, StateCompleted},
	StateAwaitingUserDecision: {StateRetrying, StateCompleted, StateAbortedPartialContent},
	StateRetrying:             {StateAwaitingUserDecision, StateCompleted},
}

type DecisionOutcome struct {
	State  RecoveryState
	Record *media.SpotVideo
}

// RecoverySession parks one failed video upload until the user decides.
type RecoverySession struct {
	ID      uuid.UUID
	SpotID  uuid.UUID
	OwnerID uuid.UUID
	Asset   *VideoAsset

	mu        sync.Mutex
	state     RecoveryState
	lastError string
	updatedAt time.Time
	clock     service.Clock
}

func (s *RecoverySession) State() RecoveryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *RecoverySession) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *RecoverySession) transition(to RecoveryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, next := range allowedTransitions[s.state] {
		if next == to {
			s.state = to
			s.updatedAt = s.clock()
			return nil
		}
	}
	return fmt.Errorf("illegal recovery transition %s -> %s", s.state, to)
}

func (s *RecoverySession) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAwaitingUserDecision
	s.lastError = err.Error()
	s.updatedAt = s.clock()
}

func (s *RecoverySession) complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateCompleted
	s.updatedAt = s.clock()
}

// Sessions is the in-memory registry of live recovery sessions.
type Sessions struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*RecoverySession
}

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[uuid.UUID]*RecoverySession)}
}

func (r *Sessions) Create(asset *VideoAsset, spotID, ownerID uuid.UUID, clock service.Clock) *RecoverySession {
	sess := &RecoverySession{
		ID:      uuid.New(),
		SpotID:  spotID,
		OwnerID: ownerID,
		Asset:   asset,
		state:   StateUploading,
		clock:   clock,
	}
	sess.updatedAt = clock()

	r.mu.Lock()
	r.byID[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

func (r *Sessions) Get(id uuid.UUID) (*RecoverySession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byID[id]
	return sess, ok
}

func (r *Sessions) Remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

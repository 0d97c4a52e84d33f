package sessions

import (
	"fmt"
	"sync"

	"auction-hub/internal/auctionerrors"
	model "auction-hub/internal/models"

	"github.com/jonboulle/clockwork"
)

// Registry tracks live voice sessions. It is the sole owner of Session
// state; sessions exist only while open and are never persisted elsewhere.
// Idle sessions are not reaped automatically.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session // key: sessionID
	clock    clockwork.Clock
}

// NewRegistry creates a new session registry.
func NewRegistry(clock clockwork.Clock) *Registry {
	return &Registry{
		sessions: make(map[string]*model.Session),
		clock:    clock,
	}
}

// Start opens a session for a user. Starting an already-known session id
// replaces the previous mapping.
func (r *Registry) Start(sessionID, userID, phoneNumber string) model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	sess := &model.Session{
		SessionID:    sessionID,
		UserID:       userID,
		PhoneNumber:  phoneNumber,
		StartTime:    now,
		LastActivity: now,
	}
	r.sessions[sessionID] = sess
	return *sess
}

// End closes a session and returns its final state.
func (r *Registry) End(sessionID string) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return model.Session{}, fmt.Errorf("end session %s: %w", sessionID, auctionerrors.ErrInvalidSession)
	}
	delete(r.sessions, sessionID)
	return *sess, nil
}

// Resolve maps a session id to its user id.
func (r *Registry) Resolve(sessionID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("resolve session %s: %w", sessionID, auctionerrors.ErrInvalidSession)
	}
	return sess.UserID, nil
}

// Touch records activity on a session. Unknown ids are ignored.
func (r *Registry) Touch(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[sessionID]; ok {
		sess.LastActivity = r.clock.Now()
	}
}

// Active returns a snapshot of all open sessions.
func (r *Registry) Active() []model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, *sess)
	}
	return out
}

// Count returns the number of open sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

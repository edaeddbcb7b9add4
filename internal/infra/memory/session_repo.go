package memory

import (
	"context"
	"sync"
	"time"

	"telegram-media-relay/internal/domain"
	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo holds conversational state in process memory. State is lost
// on restart, which is accepted; durability is not a goal here. Records
// are stored and returned by copy so two chats (or two reads of the same
// chat) never share a mutable record.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[int64]*model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[int64]*model.Session)}
}

func (r *SessionRepo) Get(ctx context.Context, chatID int64) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *SessionRepo) Set(ctx context.Context, chatID int64, s *model.Session) error {
	if s == nil {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[chatID] = s.Clone()
	return nil
}

func (r *SessionRepo) Clear(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
	return nil
}

// Sweep drops sessions not touched since the cutoff.
func (r *SessionRepo) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(olderThan) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

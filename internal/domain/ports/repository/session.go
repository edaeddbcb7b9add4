package repository

import (
	"context"
	"time"

	"telegram-media-relay/internal/domain/model"
)

// SessionRepository manages the per-chat conversational state records.
// One record at most per chat id; absence means no flow in progress
// (domain.ErrNotFound from Get).
type SessionRepository interface {
	Get(ctx context.Context, chatID int64) (*model.Session, error)
	Set(ctx context.Context, chatID int64, s *model.Session) error
	Clear(ctx context.Context, chatID int64) error
	// Sweep removes sessions not touched since the cutoff and reports
	// how many were removed.
	Sweep(ctx context.Context, olderThan time.Time) (int, error)
}

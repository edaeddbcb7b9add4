package repository

import (
	"context"

	"telegram-media-relay/internal/domain/model"
)

// RecipientRepository persists every chat the bot has seen. Upsert is
// idempotent on chat id; ListAll is read in full by the broadcast
// dispatcher.
type RecipientRepository interface {
	Upsert(ctx context.Context, r *model.Recipient) error
	FindByChatID(ctx context.Context, chatID int64) (*model.Recipient, error)
	ListAll(ctx context.Context) ([]*model.Recipient, error)
	Count(ctx context.Context) (int, error)
}

package model

import (
	"time"

	"github.com/oklog/ulid/v2"

	"telegram-media-relay/internal/domain"
)

// Recipient is a chat the bot has ever heard from; every recipient is
// eligible for broadcasts. Append-only from the flow engine's view.
type Recipient struct {
	ID          string
	ChatID      int64
	Username    string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

func NewRecipient(chatID int64, username string) (*Recipient, error) {
	if chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Recipient{
		ID:          ulid.Make().String(),
		ChatID:      chatID,
		Username:    username,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}, nil
}

func (r *Recipient) Touch() { r.LastSeenAt = time.Now() }

// DeliveryFailure records one recipient a broadcast could not reach.
type DeliveryFailure struct {
	ChatID int64
	Reason string
}

// DeliveryReport is the outcome of one broadcast dispatch. It is complete
// only after every recipient has been attempted.
type DeliveryReport struct {
	ID         string
	Attempted  int
	Delivered  int
	Failures   []DeliveryFailure
	StartedAt  time.Time
	FinishedAt time.Time
}

func NewDeliveryReport() *DeliveryReport {
	return &DeliveryReport{ID: ulid.Make().String(), StartedAt: time.Now()}
}

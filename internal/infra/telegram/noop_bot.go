package telegram

import (
	"context"
	"log"
	"time"

	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/adapter"
)

var _ adapter.BotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.BotAdapter for local/dev testing.
// It logs messages instead of sending real Telegram messages and reports
// everyone as a channel member.
type NoopBotAdapter struct{}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: %s\n", chatID, text)
	return nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: %s [buttons: %v]\n", chatID, text, rows)
	return nil
}

func (b *NoopBotAdapter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: photo %s caption=%q button=%v\n", chatID, fileID, caption, button)
	return nil
}

func (b *NoopBotAdapter) SendVideo(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: video %s caption=%q button=%v\n", chatID, fileID, caption, button)
	return nil
}

func (b *NoopBotAdapter) AnswerCallback(ctx context.Context, callbackID string) error {
	log.Printf("[noop-telegram] AnswerCallback %s\n", callbackID)
	return nil
}

func (b *NoopBotAdapter) ChatMemberStatus(ctx context.Context, channel string, chatID int64) (adapter.MemberStatus, error) {
	return adapter.MemberMember, nil
}

// wait simulates slight processing time and respects ctx.
func (b *NoopBotAdapter) wait(ctx context.Context) error {
	select {
	case <-time.After(100 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

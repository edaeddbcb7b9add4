package adapter

import (
	"context"

	"telegram-media-relay/internal/domain/model"
)

// InlineButton is one inline-keyboard button. URL buttons open a link;
// Data buttons send callback data back to the bot.
type InlineButton struct {
	Text string
	Data string
	URL  string
}

// MemberStatus is the raw membership status reported by the platform for a
// chat inside the gated channel.
type MemberStatus string

const (
	MemberCreator       MemberStatus = "creator"
	MemberAdministrator MemberStatus = "administrator"
	MemberMember        MemberStatus = "member"
	MemberLeft          MemberStatus = "left"
	MemberKicked        MemberStatus = "kicked"
	MemberUnknown       MemberStatus = "unknown"
)

// Authorized reports whether the status grants access to the bot.
func (s MemberStatus) Authorized() bool {
	switch s {
	case MemberCreator, MemberAdministrator, MemberMember:
		return true
	default:
		return false
	}
}

// BotAdapter is the transport port the core talks through. Implementations
// wrap the Telegram Bot API (or log-only stand-ins for dev).
type BotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error
	SendVideo(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error
	AnswerCallback(ctx context.Context, callbackID string) error
	ChatMemberStatus(ctx context.Context, channel string, chatID int64) (MemberStatus, error)
}

// SendText sends a plain broadcast text with the optional single button.
// Shared helper so dispatch code does not rebuild rows per content kind.
func SendText(ctx context.Context, bot BotAdapter, chatID int64, text string, button *model.InlineButton) error {
	if button == nil {
		return bot.SendMessage(ctx, chatID, text)
	}
	rows := [][]InlineButton{{{Text: button.Label, URL: button.URL}}}
	return bot.SendButtons(ctx, chatID, text, rows)
}

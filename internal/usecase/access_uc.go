package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-media-relay/internal/domain/ports/adapter"
	"telegram-media-relay/internal/infra/logging"
)

// Compile-time check
var _ AccessUseCase = (*accessUC)(nil)

// AccessUseCase decides whether an inbound chat event may proceed:
// the configured operator is always privileged, everyone else must be a
// member of the gated channel.
type AccessUseCase interface {
	IsOperator(chatID int64) bool
	IsMember(ctx context.Context, chatID int64) bool
}

type accessUC struct {
	operatorID int64
	channel    string
	bot        adapter.BotAdapter
	log        *zerolog.Logger
}

func NewAccessUseCase(operatorID int64, channel string, bot adapter.BotAdapter, logger *zerolog.Logger) *accessUC {
	return &accessUC{
		operatorID: operatorID,
		channel:    channel,
		bot:        bot,
		log:        logger,
	}
}

func (a *accessUC) IsOperator(chatID int64) bool {
	return chatID == a.operatorID
}

// IsMember fails closed: any lookup error or non-member status yields
// false. The caller re-prompts on the next message, so no retry here.
func (a *accessUC) IsMember(ctx context.Context, chatID int64) bool {
	defer logging.TraceDuration(a.log, "AccessUC.IsMember")()

	status, err := a.bot.ChatMemberStatus(ctx, a.channel, chatID)
	if err != nil {
		a.log.Debug().Err(err).Int64("chat_id", chatID).Msg("membership lookup failed")
		return false
	}
	return status.Authorized()
}

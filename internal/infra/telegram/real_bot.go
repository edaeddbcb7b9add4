package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-media-relay/internal/config"
	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/adapter"
	"telegram-media-relay/internal/infra/i18n"
	"telegram-media-relay/internal/infra/metrics"
	red "telegram-media-relay/internal/infra/redis"
	"telegram-media-relay/internal/usecase"
)

// RealBotAdapter implements adapter.BotAdapter with tgbotapi and polls
// updates concurrently, feeding them into the flow engine.
type RealBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	flow        usecase.FlowUseCase
	rateLimiter *red.RateLimiter
	tr          *i18n.Translator
	log         *zerolog.Logger

	// updateWorkers is how many goroutines will concurrently process updates.
	updateWorkers int
	// cancelPolling cancels polling when called
	cancelPolling context.CancelFunc
}

func NewRealBotAdapter(cfg *config.BotConfig, tr *i18n.Translator, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	return &RealBotAdapter{
		bot:           bot,
		cfg:           cfg,
		rateLimiter:   rateLimiter,
		tr:            tr,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

// BindFlow attaches the flow engine. Done after construction because the
// flow engine itself needs this adapter as its transport.
func (r *RealBotAdapter) BindFlow(flow usecase.FlowUseCase) { r.flow = flow }

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	if r.flow == nil {
		return errors.New("flow engine not bound")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Warn().Err(err).Int("worker", workerID).Msg("error handling update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	// Dispatcher goroutine: feed updates into updateChan
	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

// StopPolling stops the polling loop gracefully.
func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		metrics.IncUpdateReceived("callback")
		return r.handleCallbackQuery(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.Chat == nil {
		return nil
	}
	metrics.IncUpdateReceived("message")

	msg := update.Message
	chatID := msg.Chat.ID

	if !r.allow(ctx, chatID, "message") {
		metrics.IncRateLimitTriggered()
		return r.SendMessage(ctx, chatID, r.tr.T("rate_limited"))
	}

	inbound := usecase.InboundMessage{
		ChatID:  chatID,
		Text:    msg.Text,
		Caption: msg.Caption,
	}
	if msg.From != nil {
		inbound.Username = msg.From.UserName
	}
	if len(msg.Photo) > 0 {
		// Telegram sends several sizes; the last is the largest.
		inbound.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Video != nil {
		inbound.VideoFileID = msg.Video.FileID
	}

	return r.flow.HandleMessage(ctx, inbound)
}

func (r *RealBotAdapter) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return errors.New("invalid callback query")
	}
	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}

	if !r.allow(ctx, chatID, "callback") {
		metrics.IncRateLimitTriggered()
		// Still stop the spinner; a silent hang looks broken.
		return r.AnswerCallback(ctx, query.ID)
	}

	return r.flow.HandleCallback(ctx, usecase.InboundCallback{
		ChatID:     chatID,
		CallbackID: query.ID,
		Data:       query.Data,
	})
}

// allow consults the rate limiter; limiter outages fail open so a redis
// blip does not silence the bot.
func (r *RealBotAdapter) allow(ctx context.Context, chatID int64, kind string) bool {
	if r.rateLimiter == nil {
		return true
	}
	allowed, err := r.rateLimiter.Allow(ctx, red.ChatEventKey(chatID, kind), 20, time.Minute)
	if err != nil {
		r.log.Debug().Err(err).Msg("rate limiter error")
		return true
	}
	return allowed
}

// ----- adapter.BotAdapter -----

var _ adapter.BotAdapter = (*RealBotAdapter)(nil)

func (r *RealBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = buildMarkup(rows)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealBotAdapter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	if button != nil {
		msg.ReplyMarkup = singleURLMarkup(button)
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealBotAdapter) SendVideo(ctx context.Context, chatID int64, fileID, caption string, button *model.InlineButton) error {
	msg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	if button != nil {
		msg.ReplyMarkup = singleURLMarkup(button)
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealBotAdapter) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

func (r *RealBotAdapter) ChatMemberStatus(ctx context.Context, channel string, chatID int64) (adapter.MemberStatus, error) {
	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channel,
			UserID:             chatID,
		},
	})
	if err != nil {
		return adapter.MemberUnknown, err
	}
	switch member.Status {
	case "creator":
		return adapter.MemberCreator, nil
	case "administrator":
		return adapter.MemberAdministrator, nil
	case "member":
		return adapter.MemberMember, nil
	case "left":
		return adapter.MemberLeft, nil
	case "kicked":
		return adapter.MemberKicked, nil
	default:
		return adapter.MemberUnknown, nil
	}
}

func buildMarkup(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := btn.Text
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				// safe fallback: use text as callback data
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			kbRow = append(kbRow, kb)
		}
		kbRows = append(kbRows, kbRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

func singleURLMarkup(button *model.InlineButton) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(button.Label, button.URL),
		),
	)
}

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/adapter"
	"telegram-media-relay/internal/domain/ports/repository"
	"telegram-media-relay/internal/infra/logging"
	"telegram-media-relay/internal/infra/metrics"
	"telegram-media-relay/internal/infra/worker"
)

// Compile-time check
var _ BroadcastUseCase = (*broadcastUC)(nil)

// BroadcastUseCase fans finalized broadcast content out to every known
// recipient. Per-recipient failures are recorded, never fatal.
type BroadcastUseCase interface {
	Dispatch(ctx context.Context, content model.BroadcastContent, button *model.InlineButton) (*model.DeliveryReport, error)
}

type broadcastUC struct {
	recipients repository.RecipientRepository
	bot        adapter.BotAdapter
	pool       *worker.Pool
	ratePerSec int
	log        *zerolog.Logger
}

func NewBroadcastUseCase(
	recipients repository.RecipientRepository,
	bot adapter.BotAdapter,
	pool *worker.Pool,
	ratePerSec int,
	logger *zerolog.Logger,
) *broadcastUC {
	if ratePerSec <= 0 {
		ratePerSec = 25
	}
	return &broadcastUC{
		recipients: recipients,
		bot:        bot,
		pool:       pool,
		ratePerSec: ratePerSec,
		log:        logger,
	}
}

// Dispatch attempts delivery to every recipient and returns only after all
// attempts finished. Sends are throttled to stay under Telegram's bulk
// message limit (approx. 30 messages/sec).
func (uc *broadcastUC) Dispatch(ctx context.Context, content model.BroadcastContent, button *model.InlineButton) (*model.DeliveryReport, error) {
	all, err := uc.recipients.ListAll(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to list recipients for broadcast")
		return nil, err
	}

	report := model.NewDeliveryReport()
	report.Attempted = len(all)
	ctx = logging.WithBroadcastID(ctx, report.ID)
	log := logging.With(ctx, uc.log)

	metrics.IncBroadcast(string(content.Kind))
	log.Info().Int("recipients", len(all)).Str("kind", string(content.Kind)).Msg("starting broadcast")

	throttle := time.NewTicker(time.Second / time.Duration(uc.ratePerSec))
	defer throttle.Stop()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, rcpt := range all {
		select {
		case <-throttle.C:
		case <-ctx.Done():
			// A canceled context still counts the rest as failed attempts
			// so the report stays honest about who was not reached.
			mu.Lock()
			report.Failures = append(report.Failures, model.DeliveryFailure{ChatID: rcpt.ChatID, Reason: ctx.Err().Error()})
			mu.Unlock()
			continue
		}

		chatID := rcpt.ChatID
		wg.Add(1)
		task := func(ctx context.Context) error {
			defer wg.Done()
			if err := uc.deliver(ctx, chatID, content, button); err != nil {
				log.Warn().Err(err).Int64("chat_id", chatID).Msg("broadcast delivery failed")
				metrics.IncDelivery(false)
				mu.Lock()
				report.Failures = append(report.Failures, model.DeliveryFailure{ChatID: chatID, Reason: err.Error()})
				mu.Unlock()
				return nil // recorded above; not a task error
			}
			metrics.IncDelivery(true)
			mu.Lock()
			report.Delivered++
			mu.Unlock()
			return nil
		}
		if err := uc.pool.Submit(task); err != nil {
			// Pool saturated: run inline so the recipient is still attempted.
			_ = task(ctx)
		}
	}
	wg.Wait()

	report.FinishedAt = time.Now()
	log.Info().
		Int("delivered", report.Delivered).
		Int("failed", len(report.Failures)).
		Msg("broadcast finished")
	return report, nil
}

func (uc *broadcastUC) deliver(ctx context.Context, chatID int64, content model.BroadcastContent, button *model.InlineButton) error {
	switch content.Kind {
	case model.ContentPhoto:
		return uc.bot.SendPhoto(ctx, chatID, content.FileID, content.Caption, button)
	case model.ContentVideo:
		return uc.bot.SendVideo(ctx, chatID, content.FileID, content.Caption, button)
	default:
		return adapter.SendText(ctx, uc.bot, chatID, content.Body, button)
	}
}

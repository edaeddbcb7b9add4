package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-media-relay/internal/domain/ports/repository"
	"telegram-media-relay/internal/infra/metrics"
)

// SessionJanitor periodically sweeps abandoned conversational sessions.
// Completed flows are cleared inline by the flow engine; the janitor only
// collects sessions idle past the TTL.
type SessionJanitor struct {
	interval time.Duration
	ttl      time.Duration
	sessions repository.SessionRepository
	log      *zerolog.Logger
}

func NewSessionJanitor(interval, ttl time.Duration, sessions repository.SessionRepository, logger *zerolog.Logger) *SessionJanitor {
	janLog := logger.With().Str("component", "SessionJanitor").Logger()
	return &SessionJanitor{
		interval: interval,
		ttl:      ttl,
		sessions: sessions,
		log:      &janLog,
	}
}

func (j *SessionJanitor) Run(ctx context.Context) error {
	if j.ttl <= 0 {
		j.log.Info().Msg("session janitor disabled")
		return nil
	}

	j.log.Info().Dur("ttl", j.ttl).Msg("starting session janitor")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info().Msg("stopping session janitor")
			return ctx.Err()
		case <-ticker.C:
			n, err := j.sessions.Sweep(ctx, time.Now().Add(-j.ttl))
			if err != nil {
				j.log.Error().Err(err).Msg("session sweep error")
				continue
			}
			if n > 0 {
				metrics.AddSessionsSwept(n)
				j.log.Info().Int("count", n).Msg("stale sessions swept")
			}
		}
	}
}

//go:build !integration

package sched_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/infra/memory"
	"telegram-media-relay/internal/infra/sched"
)

func newJanitorLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func TestSessionJanitor(t *testing.T) {
	t.Run("zero ttl disables the janitor", func(t *testing.T) {
		janitor := sched.NewSessionJanitor(time.Millisecond, 0, memory.NewSessionRepo(), newJanitorLogger())
		if err := janitor.Run(context.Background()); err != nil {
			t.Errorf("disabled janitor must return nil, got %v", err)
		}
	})

	t.Run("stale sessions are swept on tick", func(t *testing.T) {
		repo := memory.NewSessionRepo()
		stale := model.NewBroadcastSession()
		stale.UpdatedAt = time.Now().Add(-time.Hour)
		if err := repo.Set(context.Background(), 1, stale); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		janitor := sched.NewSessionJanitor(10*time.Millisecond, time.Minute, repo, newJanitorLogger())
		if err := janitor.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}

		if _, err := repo.Get(context.Background(), 1); err == nil {
			t.Error("stale session survived the janitor")
		}
	})
}

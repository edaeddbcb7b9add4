package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-media-relay/internal/domain"
	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/repository"
)

var _ repository.RecipientRepository = (*PostgresRecipientRepo)(nil)

// PostgresRecipientRepo persists the broadcast recipient set.
//
// Schema:
//
//	CREATE TABLE recipients (
//	  id            TEXT PRIMARY KEY,
//	  chat_id       BIGINT NOT NULL UNIQUE,
//	  username      TEXT NOT NULL DEFAULT '',
//	  first_seen_at TIMESTAMPTZ NOT NULL,
//	  last_seen_at  TIMESTAMPTZ NOT NULL
//	);
type PostgresRecipientRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRecipientRepo(pool *pgxpool.Pool) *PostgresRecipientRepo {
	return &PostgresRecipientRepo{pool: pool}
}

// Upsert is idempotent on chat_id: a known chat only refreshes its
// username and last-seen time, keeping the original id and first-seen.
func (r *PostgresRecipientRepo) Upsert(ctx context.Context, rcpt *model.Recipient) error {
	const q = `
INSERT INTO recipients (id, chat_id, username, first_seen_at, last_seen_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (chat_id) DO UPDATE SET
  username=EXCLUDED.username, last_seen_at=EXCLUDED.last_seen_at;
`
	_, err := r.pool.Exec(ctx, q, rcpt.ID, rcpt.ChatID, rcpt.Username, rcpt.FirstSeenAt, rcpt.LastSeenAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("upsert recipient (sqlstate %s): %w", pgErr.Code, err)
		}
		return fmt.Errorf("upsert recipient: %w", err)
	}
	return nil
}

func (r *PostgresRecipientRepo) FindByChatID(ctx context.Context, chatID int64) (*model.Recipient, error) {
	const q = `
SELECT id, chat_id, username, first_seen_at, last_seen_at
  FROM recipients WHERE chat_id=$1;
`
	row := r.pool.QueryRow(ctx, q, chatID)
	var rcpt model.Recipient
	if err := row.Scan(&rcpt.ID, &rcpt.ChatID, &rcpt.Username, &rcpt.FirstSeenAt, &rcpt.LastSeenAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rcpt, nil
}

func (r *PostgresRecipientRepo) ListAll(ctx context.Context) ([]*model.Recipient, error) {
	const q = `
SELECT id, chat_id, username, first_seen_at, last_seen_at
  FROM recipients ORDER BY first_seen_at;
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var out []*model.Recipient
	for rows.Next() {
		var rcpt model.Recipient
		if err := rows.Scan(&rcpt.ID, &rcpt.ChatID, &rcpt.Username, &rcpt.FirstSeenAt, &rcpt.LastSeenAt); err != nil {
			return nil, err
		}
		out = append(out, &rcpt)
	}
	return out, rows.Err()
}

func (r *PostgresRecipientRepo) Count(ctx context.Context) (int, error) {
	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipients;`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipients: %w", err)
	}
	return n, nil
}

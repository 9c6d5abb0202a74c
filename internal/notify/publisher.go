package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// maxPayload is the PostgreSQL NOTIFY payload limit in bytes (exclusive).
const maxPayload = 8000

// ErrPayloadTooLarge is returned for payloads beyond the NOTIFY limit.
var ErrPayloadTooLarge = errors.New("notification payload too large")

type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Publisher sends notifications through a pooled connection.
type Publisher struct {
	db Execer
}

func NewPublisher(db Execer) *Publisher {
	return &Publisher{db: db}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if len(payload) >= maxPayload {
		return fmt.Errorf("publish on %s: %w (%d bytes)", channel, ErrPayloadTooLarge, len(payload))
	}
	if _, err := p.db.Exec(ctx, "SELECT pg_notify($1, $2)", channel, string(payload)); err != nil {
		return fmt.Errorf("publish on %s: %w", channel, err)
	}
	return nil
}

package notify

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Channels the relay listens on.
const (
	ChannelPrices  = "price_updates"
	ChannelDisplay = "display_overlay"
)

// Notification is one NOTIFY payload received on a channel.
type Notification struct {
	Channel string
	Payload string
}

// Listener is a dedicated connection that receives notifications.
type Listener interface {
	Listen(ctx context.Context, channel string) error
	WaitForNotification(ctx context.Context) (Notification, error)
	Close(ctx context.Context) error
}

// Dialer opens a new Listener.
type Dialer func(ctx context.Context) (Listener, error)

// PgDialer returns a Dialer that opens a single pgx connection outside of any pool.
func PgDialer(databaseURL string) Dialer {
	return func(ctx context.Context) (Listener, error) {
		conn, err := pgx.Connect(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect listener: %w", err)
		}
		return &pgListener{conn: conn}, nil
	}
}

type pgListener struct {
	conn *pgx.Conn
}

func (l *pgListener) Listen(ctx context.Context, channel string) error {
	if _, err := l.conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", channel, err)
	}
	return nil
}

func (l *pgListener) WaitForNotification(ctx context.Context) (Notification, error) {
	n, err := l.conn.WaitForNotification(ctx)
	if err != nil {
		return Notification{}, err
	}
	return Notification{Channel: n.Channel, Payload: n.Payload}, nil
}

func (l *pgListener) Close(ctx context.Context) error {
	return l.conn.Close(ctx)
}

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExecer struct {
	mock.Mock
}

func (m *mockExecer) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func TestPublisher_Publish(t *testing.T) {
	db := &mockExecer{}
	p := NewPublisher(db)
	ctx := context.Background()

	db.On("Exec", ctx, "SELECT pg_notify($1, $2)", []any{ChannelDisplay, `{"campaign_id":"c1"}`}).
		Return(pgconn.NewCommandTag("SELECT 1"), nil)

	require.NoError(t, p.Publish(ctx, ChannelDisplay, []byte(`{"campaign_id":"c1"}`)))
	db.AssertExpectations(t)
}

func TestPublisher_PublishError(t *testing.T) {
	db := &mockExecer{}
	p := NewPublisher(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, errors.New("pool closed"))

	err := p.Publish(ctx, ChannelPrices, []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish on price_updates")
}

func TestPublisher_PayloadTooLarge(t *testing.T) {
	db := &mockExecer{}
	p := NewPublisher(db)

	err := p.Publish(context.Background(), ChannelDisplay, []byte(strings.Repeat("x", 8000)))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

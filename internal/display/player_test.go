package display

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/model"
	"github.com/djcafe/cafe/internal/notify"
	"github.com/djcafe/cafe/internal/pkg/clock"
)

type mockCampaigns struct{ mock.Mock }

func (m *mockCampaigns) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *mockCampaigns) List(ctx context.Context, activeOnly bool) ([]model.Campaign, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

type mockProducts struct{ mock.Mock }

func (m *mockProducts) GetMany(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

type stubVideos struct {
	base string
	err  error
}

func (s stubVideos) VideoURL(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.base + "/" + key, nil
}

type recordingPublisher struct {
	channel  string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.channel = channel
	p.payloads = append(p.payloads, payload)
	return nil
}

var start = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func happyHour() *model.Campaign {
	key := "campaigns/camp-1/intro.mp4"
	return &model.Campaign{
		ID:                  "camp-1",
		Title:               "Happy Hour",
		VideoKey:            &key,
		CountdownSeconds:    5,
		VideoSeconds:        30,
		HighlightSeconds:    10,
		HighlightProductIDs: []string{"p-2", "p-1", "p-gone", "p-off"},
		Active:              true,
	}
}

func menu() []model.Product {
	return []model.Product{
		{ID: "p-1", Name: "Espresso", Category: "coffee", Price: 300, BasePrice: 250, Available: true},
		{ID: "p-2", Name: "Mojito", Category: "cocktails", Price: 700, BasePrice: 900, Available: true},
		{ID: "p-off", Name: "Seasonal", Category: "cocktails", Price: 800, BasePrice: 800, Available: false},
	}
}

type playerFixture struct {
	campaigns *mockCampaigns
	products  *mockProducts
	pub       *recordingPublisher
	clock     *clock.MockClock
	player    *Player
}

func newPlayerFixture() *playerFixture {
	f := &playerFixture{
		campaigns: &mockCampaigns{},
		products:  &mockProducts{},
		pub:       &recordingPublisher{},
		clock:     clock.NewMockClock(start),
	}
	f.player = NewPlayer(f.campaigns, f.products, stubVideos{base: "https://cdn.example.com"}, f.pub, f.clock, zerolog.Nop())
	return f
}

func TestPlayer_Play(t *testing.T) {
	f := newPlayerFixture()
	ctx := context.Background()
	c := happyHour()

	f.campaigns.On("GetByID", ctx, "camp-1").Return(c, nil)
	f.products.On("GetMany", ctx, c.HighlightProductIDs).Return(menu(), nil)

	o, err := f.player.Play(ctx, "camp-1", true)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/campaigns/camp-1/intro.mp4", o.VideoURL)
	assert.Equal(t, start, o.StartsAt)
	require.Len(t, o.Products, 2)
	assert.Equal(t, "Mojito", o.Products[0].Name, "campaign order is kept")
	assert.Equal(t, int64(700), o.Products[0].Price)
	assert.Equal(t, "Espresso", o.Products[1].Name)

	assert.Equal(t, notify.ChannelDisplay, f.pub.channel)
	require.Len(t, f.pub.payloads, 1)
	var published Overlay
	require.NoError(t, json.Unmarshal(f.pub.payloads[0], &published))
	assert.Equal(t, "camp-1", published.CampaignID)
	assert.Equal(t, 30, published.VideoSeconds)
}

func TestPlayer_StateFollowsSequence(t *testing.T) {
	f := newPlayerFixture()
	ctx := context.Background()
	c := happyHour()

	assert.Equal(t, State{Phase: PhaseIdle}, f.player.State())

	f.campaigns.On("GetByID", ctx, "camp-1").Return(c, nil)
	f.products.On("GetMany", ctx, mock.Anything).Return(menu(), nil)
	_, err := f.player.Play(ctx, "camp-1", true)
	require.NoError(t, err)

	st := f.player.State()
	assert.Equal(t, PhaseCountdown, st.Phase)
	assert.Equal(t, int64(5000), st.RemainingMS)
	require.NotNil(t, st.Overlay)

	f.clock.Advance(6 * time.Second)
	st = f.player.State()
	assert.Equal(t, PhaseVideo, st.Phase)
	assert.Equal(t, int64(29000), st.RemainingMS)

	f.clock.Advance(30 * time.Second)
	assert.Equal(t, PhaseHighlight, f.player.State().Phase)

	f.clock.Advance(10 * time.Second)
	assert.Equal(t, State{Phase: PhaseIdle}, f.player.State())
}

func TestPlayer_ScheduledPlaySkippedWhileBusy(t *testing.T) {
	f := newPlayerFixture()
	ctx := context.Background()

	f.campaigns.On("GetByID", ctx, "camp-1").Return(happyHour(), nil)
	f.products.On("GetMany", ctx, mock.Anything).Return(menu(), nil)

	_, err := f.player.Play(ctx, "camp-1", false)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Second)
	_, err = f.player.Play(ctx, "camp-1", false)
	assert.ErrorIs(t, err, ErrBusy)

	// Manual plays interrupt the running overlay.
	_, err = f.player.Play(ctx, "camp-1", true)
	require.NoError(t, err)
	assert.Len(t, f.pub.payloads, 2)

	f.clock.Advance(time.Minute)
	_, err = f.player.Play(ctx, "camp-1", false)
	require.NoError(t, err)
}

func TestPlayer_RejectsUnplayableCampaigns(t *testing.T) {
	ctx := context.Background()

	inactive := happyHour()
	inactive.Active = false
	noVideo := happyHour()
	noVideo.VideoKey = nil

	tests := []struct {
		name     string
		campaign *model.Campaign
		field    string
	}{
		{"inactive", inactive, "active"},
		{"no video", noVideo, "video"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPlayerFixture()
			f.campaigns.On("GetByID", ctx, "camp-1").Return(tt.campaign, nil)

			_, err := f.player.Play(ctx, "camp-1", true)
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, f.pub.payloads)
		})
	}
}

func TestPlayer_NotFound(t *testing.T) {
	f := newPlayerFixture()
	ctx := context.Background()
	f.campaigns.On("GetByID", ctx, "nope").Return(nil, core.ErrNotFound)

	_, err := f.player.Play(ctx, "nope", true)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPlayer_PublishFailureKeepsIdle(t *testing.T) {
	f := newPlayerFixture()
	ctx := context.Background()
	f.pub.err = errors.New("pool closed")

	f.campaigns.On("GetByID", ctx, "camp-1").Return(happyHour(), nil)
	f.products.On("GetMany", ctx, mock.Anything).Return(menu(), nil)

	_, err := f.player.Play(ctx, "camp-1", true)
	require.Error(t, err)
	assert.Equal(t, PhaseIdle, f.player.State().Phase)
}

func TestPlayer_VideoResolveError(t *testing.T) {
	f := newPlayerFixture()
	f.player.videos = stubVideos{err: errors.New("storage disabled")}
	ctx := context.Background()

	f.campaigns.On("GetByID", ctx, "camp-1").Return(happyHour(), nil)

	_, err := f.player.Play(ctx, "camp-1", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve video of campaign camp-1")
}

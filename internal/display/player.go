package display

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/model"
	"github.com/djcafe/cafe/internal/notify"
	"github.com/djcafe/cafe/internal/pkg/clock"
)

// ErrBusy is returned by a scheduled play while another overlay is still running.
var ErrBusy = errors.New("another overlay is playing")

type CampaignSource interface {
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
}

type ProductSource interface {
	GetMany(ctx context.Context, ids []string) ([]model.Product, error)
}

type VideoResolver interface {
	VideoURL(ctx context.Context, key string) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Player starts campaign overlays and tracks the one currently on screen.
type Player struct {
	campaigns CampaignSource
	products  ProductSource
	videos    VideoResolver
	pub       Publisher
	clock     clock.Clock
	logger    zerolog.Logger

	playMu sync.Mutex

	mu      sync.Mutex
	current *Overlay
}

func NewPlayer(campaigns CampaignSource, products ProductSource, videos VideoResolver, pub Publisher, clk clock.Clock, logger zerolog.Logger) *Player {
	return &Player{
		campaigns: campaigns,
		products:  products,
		videos:    videos,
		pub:       pub,
		clock:     clk,
		logger:    logger.With().Str("component", "display-player").Logger(),
	}
}

// Play publishes the overlay of an active campaign with a video, starting now.
// Unless manual, it returns ErrBusy when an overlay is still running.
func (p *Player) Play(ctx context.Context, campaignID string, manual bool) (*Overlay, error) {
	p.playMu.Lock()
	defer p.playMu.Unlock()

	if !manual {
		if st := p.State(); st.Phase != PhaseIdle {
			return nil, fmt.Errorf("play campaign %s: %w", campaignID, ErrBusy)
		}
	}

	c, err := p.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, &core.ValidationError{Field: "active", Message: "campaign is not active"}
	}
	if !c.HasVideo() {
		return nil, &core.ValidationError{Field: "video", Message: "campaign has no video"}
	}

	url, err := p.videos.VideoURL(ctx, *c.VideoKey)
	if err != nil {
		return nil, fmt.Errorf("resolve video of campaign %s: %w", c.ID, err)
	}
	products, err := p.products.GetMany(ctx, c.HighlightProductIDs)
	if err != nil {
		return nil, fmt.Errorf("load highlighted products of campaign %s: %w", c.ID, err)
	}

	o := newOverlay(c, url, products, p.clock.Now())
	payload, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	if err := p.pub.Publish(ctx, notify.ChannelDisplay, payload); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = o
	p.mu.Unlock()

	p.logger.Info().
		Str("campaign_id", c.ID).
		Bool("manual", manual).
		Int("products", len(o.Products)).
		Dur("length", o.Sequence().Total()).
		Msg("overlay started")
	return o, nil
}

func (p *Player) State() State {
	return p.StateAt(p.clock.Now())
}

// StateAt returns the phase of the current overlay at now. It is idle when
// nothing was played or the last overlay has finished.
func (p *Player) StateAt(now time.Time) State {
	p.mu.Lock()
	o := p.current
	p.mu.Unlock()

	if o == nil {
		return State{Phase: PhaseIdle}
	}
	phase, remaining := o.Sequence().PhaseAt(now.Sub(o.StartsAt))
	if phase == PhaseDone {
		return State{Phase: PhaseIdle}
	}
	return State{Phase: phase, RemainingMS: remaining.Milliseconds(), Overlay: o}
}

package display

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/djcafe/cafe/internal/model"
)

type CampaignLister interface {
	List(ctx context.Context, activeOnly bool) ([]model.Campaign, error)
}

type overlayPlayer interface {
	Play(ctx context.Context, campaignID string, manual bool) (*Overlay, error)
}

// ScheduledCampaign is one registered cron entry.
type ScheduledCampaign struct {
	CampaignID string    `json:"campaign_id"`
	Title      string    `json:"title"`
	Schedule   string    `json:"schedule"`
	Next       time.Time `json:"next"`
}

// Scheduler plays campaigns on their cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	campaigns CampaignLister
	player    overlayPlayer
	timeout   time.Duration
	logger    zerolog.Logger

	mu      sync.Mutex
	baseCtx context.Context
	entries map[string]scheduledEntry
}

type scheduledEntry struct {
	id       cron.EntryID
	title    string
	schedule string
}

func NewScheduler(campaigns CampaignLister, player overlayPlayer, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "display-scheduler").Logger()
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		campaigns: campaigns,
		player:    player,
		timeout:   30 * time.Second,
		logger:    logger,
		baseCtx:   context.Background(),
		entries:   make(map[string]scheduledEntry),
	}
}

// ValidateSchedule reports whether spec is a standard five-field cron expression.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

// Run loads the schedule and fires campaigns until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	if _, err := s.Reload(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial schedule load failed")
	}
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// Reload replaces every entry with the schedules of the active campaigns that
// have a video. Campaigns with an unparsable schedule are skipped. A nil
// Scheduler is disabled and schedules nothing.
func (s *Scheduler) Reload(ctx context.Context) (int, error) {
	if s == nil {
		return 0, nil
	}
	campaigns, err := s.campaigns.List(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("reload schedule: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		s.cron.Remove(e.id)
		delete(s.entries, id)
	}

	for _, c := range campaigns {
		if c.Schedule == nil || *c.Schedule == "" || !c.HasVideo() {
			continue
		}
		campaignID := c.ID
		entryID, err := s.cron.AddFunc(*c.Schedule, func() { s.fire(campaignID) })
		if err != nil {
			s.logger.Warn().Err(err).Str("campaign_id", c.ID).Str("schedule", *c.Schedule).Msg("skipping campaign schedule")
			continue
		}
		s.entries[c.ID] = scheduledEntry{id: entryID, title: c.Title, schedule: *c.Schedule}
	}

	s.logger.Info().Int("campaigns", len(s.entries)).Msg("schedule loaded")
	return len(s.entries), nil
}

// Entries returns the scheduled campaigns ordered by their next run.
func (s *Scheduler) Entries() []ScheduledCampaign {
	if s == nil {
		return []ScheduledCampaign{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScheduledCampaign, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, ScheduledCampaign{
			CampaignID: id,
			Title:      e.title,
			Schedule:   e.schedule,
			Next:       s.cron.Entry(e.id).Next,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Next.Equal(out[j].Next) {
			return out[i].CampaignID < out[j].CampaignID
		}
		return out[i].Next.Before(out[j].Next)
	})
	return out
}

func (s *Scheduler) fire(campaignID string) {
	s.mu.Lock()
	base := s.baseCtx
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, s.timeout)
	defer cancel()

	_, err := s.player.Play(ctx, campaignID, false)
	switch {
	case errors.Is(err, ErrBusy):
		s.logger.Info().Str("campaign_id", campaignID).Msg("skipped scheduled play, overlay still running")
	case err != nil:
		s.logger.Error().Err(err).Str("campaign_id", campaignID).Msg("scheduled play failed")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/djcafe/cafe/internal/model"
)

const campaignColumns = `id, title, video_key, countdown_seconds, video_seconds, highlight_seconds, highlight_product_ids, schedule, active, created_at, updated_at`

type CampaignService struct {
	db DB
}

func NewCampaignService(db DB) *CampaignService {
	return &CampaignService{db: db}
}

// ValidateCampaign checks the overlay timing limits of a campaign.
func ValidateCampaign(c *model.Campaign) error {
	if strings.TrimSpace(c.Title) == "" {
		return invalid("title", "is required")
	}
	if c.CountdownSeconds < 0 || c.CountdownSeconds > 60 {
		return invalid("countdown_seconds", "must be between 0 and 60")
	}
	if c.VideoSeconds < 1 || c.VideoSeconds > 600 {
		return invalid("video_seconds", "must be between 1 and 600")
	}
	if c.HighlightSeconds < 0 || c.HighlightSeconds > 120 {
		return invalid("highlight_seconds", "must be between 0 and 120")
	}
	if len(c.HighlightProductIDs) > 0 && c.HighlightSeconds == 0 {
		return invalid("highlight_seconds", "must be positive when products are highlighted")
	}
	if c.Schedule != nil && *c.Schedule != "" {
		if _, err := cron.ParseStandard(*c.Schedule); err != nil {
			return invalid("schedule", "invalid cron expression: %v", err)
		}
	}
	return nil
}

func (s *CampaignService) Create(ctx context.Context, c *model.Campaign) error {
	if c.HighlightProductIDs == nil {
		c.HighlightProductIDs = []string{}
	}
	if err := ValidateCampaign(c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := s.db.Exec(ctx,
		`INSERT INTO campaigns (`+campaignColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.Title, c.VideoKey, c.CountdownSeconds, c.VideoSeconds, c.HighlightSeconds,
		c.HighlightProductIDs, c.Schedule, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create campaign: %w", classify(err))
	}
	return nil
}

func (s *CampaignService) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := scanCampaign(s.db.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id), &c)
	if err != nil {
		return nil, fmt.Errorf("get campaign %s: %w", id, classify(err))
	}
	return &c, nil
}

// List returns campaigns ordered by title.
func (s *CampaignService) List(ctx context.Context, activeOnly bool) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY title, id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []model.Campaign
	for rows.Next() {
		var c model.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *CampaignService) Update(ctx context.Context, c *model.Campaign) error {
	if c.HighlightProductIDs == nil {
		c.HighlightProductIDs = []string{}
	}
	if err := ValidateCampaign(c); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE campaigns SET title = $1, countdown_seconds = $2, video_seconds = $3,
		 highlight_seconds = $4, highlight_product_ids = $5, schedule = $6, active = $7,
		 updated_at = now()
		 WHERE id = $8`,
		c.Title, c.CountdownSeconds, c.VideoSeconds, c.HighlightSeconds,
		c.HighlightProductIDs, c.Schedule, c.Active, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update campaign %s: %w", c.ID, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update campaign %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// AttachVideo stores the object key of an uploaded video and returns the key
// it replaced, if any.
func (s *CampaignService) AttachVideo(ctx context.Context, id, key string) (*string, error) {
	var previous *string
	err := s.db.QueryRow(ctx,
		`UPDATE campaigns c SET video_key = $1, updated_at = now()
		 FROM (SELECT id, video_key FROM campaigns WHERE id = $2 FOR UPDATE) old
		 WHERE c.id = old.id
		 RETURNING old.video_key`, key, id,
	).Scan(&previous)
	if err != nil {
		return nil, fmt.Errorf("attach video to campaign %s: %w", id, classify(err))
	}
	return previous, nil
}

// Delete removes a campaign and returns it so the caller can clean up its video.
func (s *CampaignService) Delete(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := scanCampaign(s.db.QueryRow(ctx,
		`DELETE FROM campaigns WHERE id = $1 RETURNING `+campaignColumns, id), &c)
	if err != nil {
		return nil, fmt.Errorf("delete campaign %s: %w", id, classify(err))
	}
	return &c, nil
}

func scanCampaign(row scanner, c *model.Campaign) error {
	return row.Scan(&c.ID, &c.Title, &c.VideoKey, &c.CountdownSeconds, &c.VideoSeconds,
		&c.HighlightSeconds, &c.HighlightProductIDs, &c.Schedule, &c.Active,
		&c.CreatedAt, &c.UpdatedAt)
}

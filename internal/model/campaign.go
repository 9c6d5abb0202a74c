package model

import "time"

// Campaign is a promotional video played on the TV displays. A play runs a
// countdown, the video, and then highlights the listed products' prices.
type Campaign struct {
	ID                  string    `json:"id" db:"id"`
	Title               string    `json:"title" db:"title"`
	VideoKey            *string   `json:"video_key,omitempty" db:"video_key"`
	VideoURL            string    `json:"video_url,omitempty" db:"-"`
	CountdownSeconds    int       `json:"countdown_seconds" db:"countdown_seconds"`
	VideoSeconds        int       `json:"video_seconds" db:"video_seconds"`
	HighlightSeconds    int       `json:"highlight_seconds" db:"highlight_seconds"`
	HighlightProductIDs []string  `json:"highlight_product_ids" db:"highlight_product_ids"`
	Schedule            *string   `json:"schedule,omitempty" db:"schedule"`
	Active              bool      `json:"active" db:"active"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// HasVideo reports whether a video object has been uploaded for the campaign.
func (c *Campaign) HasVideo() bool {
	return c.VideoKey != nil && *c.VideoKey != ""
}

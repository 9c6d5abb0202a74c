package display

import (
	"time"

	"github.com/djcafe/cafe/internal/model"
)

// HighlightedProduct is a product shown during the highlight phase.
type HighlightedProduct struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     int64   `json:"price"`
	BasePrice int64   `json:"base_price"`
	ImageURL  *string `json:"image_url,omitempty"`
}

// Overlay is the message published on the display channel when a campaign starts.
type Overlay struct {
	CampaignID       string               `json:"campaign_id"`
	Title            string               `json:"title"`
	VideoURL         string               `json:"video_url"`
	StartsAt         time.Time            `json:"starts_at"`
	CountdownSeconds int                  `json:"countdown_seconds"`
	VideoSeconds     int                  `json:"video_seconds"`
	HighlightSeconds int                  `json:"highlight_seconds"`
	Products         []HighlightedProduct `json:"products"`
}

func (o *Overlay) Sequence() Sequence {
	return Sequence{
		Countdown: time.Duration(o.CountdownSeconds) * time.Second,
		Video:     time.Duration(o.VideoSeconds) * time.Second,
		Highlight: time.Duration(o.HighlightSeconds) * time.Second,
	}
}

// State is what a display should be showing at a point in time.
type State struct {
	Phase       Phase    `json:"phase"`
	RemainingMS int64    `json:"remaining_ms"`
	Overlay     *Overlay `json:"overlay,omitempty"`
}

// newOverlay builds the overlay for c. Products keep the campaign's highlight
// order; unknown and unavailable products are left out.
func newOverlay(c *model.Campaign, videoURL string, products []model.Product, startsAt time.Time) *Overlay {
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	o := &Overlay{
		CampaignID:       c.ID,
		Title:            c.Title,
		VideoURL:         videoURL,
		StartsAt:         startsAt,
		CountdownSeconds: c.CountdownSeconds,
		VideoSeconds:     c.VideoSeconds,
		HighlightSeconds: c.HighlightSeconds,
		Products:         []HighlightedProduct{},
	}
	for _, id := range c.HighlightProductIDs {
		p, ok := byID[id]
		if !ok || !p.Available {
			continue
		}
		o.Products = append(o.Products, HighlightedProduct{
			ID:        p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			BasePrice: p.BasePrice,
			ImageURL:  p.ImageURL,
		})
	}
	return o
}

package request

type CreateCampaign struct {
	Title               string   `json:"title" validate:"required,max=100"`
	CountdownSeconds    int      `json:"countdown_seconds" validate:"min=0,max=60"`
	VideoSeconds        int      `json:"video_seconds" validate:"required,min=1,max=600"`
	HighlightSeconds    int      `json:"highlight_seconds" validate:"min=0,max=120"`
	HighlightProductIDs []string `json:"highlight_product_ids" validate:"max=20,dive,uuid"`
	Schedule            *string  `json:"schedule" validate:"omitempty,cronspec"`
	Active              *bool    `json:"active"`
}

type UpdateCampaign struct {
	Title               *string   `json:"title" validate:"omitempty,min=1,max=100"`
	CountdownSeconds    *int      `json:"countdown_seconds" validate:"omitempty,min=0,max=60"`
	VideoSeconds        *int      `json:"video_seconds" validate:"omitempty,min=1,max=600"`
	HighlightSeconds    *int      `json:"highlight_seconds" validate:"omitempty,min=0,max=120"`
	HighlightProductIDs *[]string `json:"highlight_product_ids" validate:"omitempty,max=20,dive,uuid"`
	Schedule            *string   `json:"schedule" validate:"omitempty,cronspec"`
	Active              *bool     `json:"active"`
}

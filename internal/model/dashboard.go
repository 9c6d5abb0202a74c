package model

// Dashboard summarises the café state for the admin landing page.
type Dashboard struct {
	Products           int            `json:"products"`
	AvailableProducts  int            `json:"available_products"`
	Tables             map[string]int `json:"tables"`
	ActiveCampaigns    int            `json:"active_campaigns"`
	PriceChangesLastHr int            `json:"price_changes_last_hour"`
}

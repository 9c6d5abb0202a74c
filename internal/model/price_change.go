package model

import "time"

// PriceChange records one price movement of a product. Inserting a row
// notifies the price_updates channel through a database trigger.
type PriceChange struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	OldPrice  int64     `json:"old_price" db:"old_price"`
	NewPrice  int64     `json:"new_price" db:"new_price"`
	Reason    string    `json:"reason" db:"reason"`
	ChangedAt time.Time `json:"changed_at" db:"changed_at"`
}

// PriceUpdate is the JSON payload carried on the price_updates channel.
type PriceUpdate struct {
	ChangeID  string    `json:"change_id"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	OldPrice  int64     `json:"old_price"`
	NewPrice  int64     `json:"new_price"`
	Reason    string    `json:"reason"`
	ChangedAt time.Time `json:"changed_at"`
}

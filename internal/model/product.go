package model

import (
	"regexp"
	"time"
)

// Product is a menu item. All prices are in cents.
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Description *string   `json:"description,omitempty" db:"description"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	BasePrice   int64     `json:"base_price" db:"base_price"`
	Price       int64     `json:"price" db:"price"`
	MinPrice    int64     `json:"min_price" db:"min_price"`
	MaxPrice    int64     `json:"max_price" db:"max_price"`
	Available   bool      `json:"available" db:"available"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// InBounds reports whether price lies within the product's min/max range.
func (p *Product) InBounds(price int64) bool {
	return price >= p.MinPrice && price <= p.MaxPrice
}

var categoryRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} &'/-]{0,49}$`)

// ValidCategory reports whether name is an acceptable category: up to 50
// letters, digits, spaces and &'/- starting with a letter or digit.
func ValidCategory(name string) bool {
	return categoryRegex.MatchString(name)
}

// CategoryCount is a category name with the number of products in it.
type CategoryCount struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
}

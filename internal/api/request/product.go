package request

type CreateProduct struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Category    string  `json:"category" validate:"required,category"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	BasePrice   int64   `json:"base_price" validate:"required,gt=0"`
	Price       *int64  `json:"price" validate:"omitempty,gt=0"`
	MinPrice    int64   `json:"min_price" validate:"required,gt=0"`
	MaxPrice    int64   `json:"max_price" validate:"required,gtfield=MinPrice"`
	Available   *bool   `json:"available"`
	SortOrder   int     `json:"sort_order" validate:"min=0"`
}

// UpdateProduct changes descriptive fields only; prices move through the
// pricing endpoints.
type UpdateProduct struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Category    *string `json:"category" validate:"omitempty,category"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	BasePrice   *int64  `json:"base_price" validate:"omitempty,gt=0"`
	Available   *bool   `json:"available"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,min=0"`
}

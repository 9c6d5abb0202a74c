package request

type UpdatePrice struct {
	Price int64 `json:"price" validate:"required,gt=0"`
}

type UpdatePriceBounds struct {
	MinPrice int64 `json:"min_price" validate:"required,gt=0"`
	MaxPrice int64 `json:"max_price" validate:"required,gtfield=MinPrice"`
}

type BulkPriceUpdate struct {
	Items []BulkPriceItem `json:"items" validate:"required,min=1,max=500,dive"`
}

type BulkPriceItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Price     int64  `json:"price" validate:"required,gt=0"`
}

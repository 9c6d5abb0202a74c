package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/djcafe/cafe/internal/model"
)

const priceChangeColumns = `id, product_id, old_price, new_price, reason, changed_at`

// PriceItem is one entry of a bulk price update.
type PriceItem struct {
	ProductID string `json:"product_id"`
	Price     int64  `json:"price"`
}

// BulkResult reports the outcome of one bulk item. Change is nil when the
// price was already at the requested value or the item failed.
type BulkResult struct {
	ProductID string             `json:"product_id"`
	Change    *model.PriceChange `json:"change,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// PricingService moves product prices. Every movement inserts a price_changes
// row in the same statement as the update; a trigger on that table publishes
// the change on the price_updates channel.
type PricingService struct {
	db       DB
	products *ProductService
}

func NewPricingService(db DB, products *ProductService) *PricingService {
	return &PricingService{db: db, products: products}
}

// UpdatePrice sets a product's price. It returns a nil change when the price
// is already at the requested value.
func (s *PricingService) UpdatePrice(ctx context.Context, productID string, price int64, reason string) (*model.PriceChange, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.InBounds(price) {
		return nil, invalid("price", "must be between %d and %d", p.MinPrice, p.MaxPrice)
	}
	if p.Price == price {
		return nil, nil
	}

	var c model.PriceChange
	err = scanPriceChange(s.db.QueryRow(ctx,
		`WITH cur AS (
			SELECT id, price FROM products WHERE id = $1 FOR UPDATE
		 ), upd AS (
			UPDATE products p SET price = $2, updated_at = now()
			FROM cur
			WHERE p.id = cur.id AND cur.price <> $2 AND $2 BETWEEN p.min_price AND p.max_price
			RETURNING p.id, cur.price AS old_price, p.price AS new_price
		 )
		 INSERT INTO price_changes (`+priceChangeColumns+`)
		 SELECT $3, id, old_price, new_price, $4, now() FROM upd
		 RETURNING `+priceChangeColumns,
		productID, price, uuid.NewString(), reason,
	), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		// Changed concurrently: either already at this price or the bounds moved.
		return nil, s.recheckBounds(ctx, productID, price)
	}
	if err != nil {
		return nil, fmt.Errorf("update price of product %s: %w", productID, classify(err))
	}
	return &c, nil
}

// recheckBounds re-reads a product whose update matched no row and reports
// the bounds violation if its range no longer admits price.
func (s *PricingService) recheckBounds(ctx context.Context, productID string, price int64) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.InBounds(price) {
		return invalid("price", "must be between %d and %d", p.MinPrice, p.MaxPrice)
	}
	return nil
}

// UpdateBounds changes a product's min/max range. The current and base prices
// are clamped into the new range; a clamped price is recorded as a bounds change.
func (s *PricingService) UpdateBounds(ctx context.Context, productID string, minPrice, maxPrice int64) (*model.Product, *model.PriceChange, error) {
	if minPrice <= 0 {
		return nil, nil, invalid("min_price", "must be positive")
	}
	if minPrice >= maxPrice {
		return nil, nil, invalid("max_price", "must be greater than min_price")
	}

	var (
		changeID  *string
		oldPrice  int64
		newPrice  int64
		changedAt time.Time
	)
	err := s.db.QueryRow(ctx,
		`WITH cur AS (
			SELECT id, price FROM products WHERE id = $1 FOR UPDATE
		 ), upd AS (
			UPDATE products p SET min_price = $2, max_price = $3,
				base_price = LEAST(GREATEST(p.base_price, $2), $3),
				price = LEAST(GREATEST(p.price, $2), $3),
				updated_at = now()
			FROM cur
			WHERE p.id = cur.id
			RETURNING p.id, cur.price AS old_price, p.price AS new_price, p.updated_at
		 ), ins AS (
			INSERT INTO price_changes (`+priceChangeColumns+`)
			SELECT $4, id, old_price, new_price, $5, updated_at FROM upd WHERE old_price <> new_price
			RETURNING id
		 )
		 SELECT (SELECT id FROM ins), old_price, new_price, updated_at FROM upd`,
		productID, minPrice, maxPrice, uuid.NewString(), model.ReasonBounds,
	).Scan(&changeID, &oldPrice, &newPrice, &changedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("update price bounds of product %s: %w", productID, classify(err))
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	if changeID == nil {
		return p, nil, nil
	}
	return p, &model.PriceChange{
		ID:        *changeID,
		ProductID: productID,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		Reason:    model.ReasonBounds,
		ChangedAt: changedAt,
	}, nil
}

// BulkUpdate applies each item independently; one failing item does not stop the others.
func (s *PricingService) BulkUpdate(ctx context.Context, items []PriceItem) []BulkResult {
	results := make([]BulkResult, 0, len(items))
	for _, item := range items {
		res := BulkResult{ProductID: item.ProductID}
		change, err := s.UpdatePrice(ctx, item.ProductID, item.Price, model.ReasonBulk)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Change = change
		}
		results = append(results, res)
	}
	return results
}

// ResetToBase moves every product whose price differs from its base price back to it.
func (s *PricingService) ResetToBase(ctx context.Context) ([]model.PriceChange, error) {
	rows, err := s.db.Query(ctx,
		`WITH cur AS (
			SELECT id, price, base_price FROM products WHERE price <> base_price FOR UPDATE
		 ), upd AS (
			UPDATE products p SET price = cur.base_price, updated_at = now()
			FROM cur
			WHERE p.id = cur.id
			RETURNING p.id, cur.price AS old_price, p.price AS new_price
		 )
		 INSERT INTO price_changes (`+priceChangeColumns+`)
		 SELECT gen_random_uuid(), id, old_price, new_price, $1, now() FROM upd
		 RETURNING `+priceChangeColumns, model.ReasonReset)
	if err != nil {
		return nil, fmt.Errorf("reset prices: %w", err)
	}
	defer rows.Close()

	changes, err := collectPriceChanges(rows)
	if err != nil {
		return nil, fmt.Errorf("reset prices: %w", err)
	}
	return changes, nil
}

// History returns the latest price changes of one product, newest first.
func (s *PricingService) History(ctx context.Context, productID string, limit int) ([]model.PriceChange, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+priceChangeColumns+` FROM price_changes
		 WHERE product_id = $1
		 ORDER BY changed_at DESC, id
		 LIMIT $2`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list price history of product %s: %w", productID, classify(err))
	}
	defer rows.Close()

	changes, err := collectPriceChanges(rows)
	if err != nil {
		return nil, fmt.Errorf("list price history of product %s: %w", productID, classify(err))
	}
	return changes, nil
}

// Recent returns the latest price changes across all products, newest first.
func (s *PricingService) Recent(ctx context.Context, since time.Time, limit int) ([]model.PriceChange, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+priceChangeColumns+` FROM price_changes
		 WHERE changed_at >= $1
		 ORDER BY changed_at DESC, id
		 LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent price changes: %w", classify(err))
	}
	defer rows.Close()

	changes, err := collectPriceChanges(rows)
	if err != nil {
		return nil, fmt.Errorf("list recent price changes: %w", classify(err))
	}
	return changes, nil
}

func scanPriceChange(row scanner, c *model.PriceChange) error {
	return row.Scan(&c.ID, &c.ProductID, &c.OldPrice, &c.NewPrice, &c.Reason, &c.ChangedAt)
}

func collectPriceChanges(rows pgx.Rows) ([]model.PriceChange, error) {
	var changes []model.PriceChange
	for rows.Next() {
		var c model.PriceChange
		if err := scanPriceChange(rows, &c); err != nil {
			return nil, fmt.Errorf("scan price change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

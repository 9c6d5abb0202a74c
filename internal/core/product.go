package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/djcafe/cafe/internal/model"
)

const productColumns = `id, name, category, description, image_url, base_price, price, min_price, max_price, available, sort_order, created_at, updated_at`

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	Category  string
	Available *bool
	Search    string
	Limit     int
	Cursor    string
}

type ProductService struct {
	db DB
}

func NewProductService(db DB) *ProductService {
	return &ProductService{db: db}
}

// ValidateProduct checks the price invariants of a product:
// 0 < min < max, and both price and base price within [min, max].
func ValidateProduct(p *model.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return invalid("category", "is required")
	}
	if !model.ValidCategory(p.Category) {
		return invalid("category", "must be up to 50 letters, digits, spaces or &'/- characters")
	}
	if p.MinPrice <= 0 {
		return invalid("min_price", "must be positive")
	}
	if p.MinPrice >= p.MaxPrice {
		return invalid("max_price", "must be greater than min_price")
	}
	if !p.InBounds(p.Price) {
		return invalid("price", "must be between %d and %d", p.MinPrice, p.MaxPrice)
	}
	if !p.InBounds(p.BasePrice) {
		return invalid("base_price", "must be between %d and %d", p.MinPrice, p.MaxPrice)
	}
	if p.SortOrder < 0 {
		return invalid("sort_order", "must not be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p *model.Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.db.Exec(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Name, p.Category, p.Description, p.ImageURL, p.BasePrice, p.Price,
		p.MinPrice, p.MaxPrice, p.Available, p.SortOrder, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", classify(err))
	}
	return nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := scanProduct(s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id), &p)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, classify(err))
	}
	return &p, nil
}

// GetMany returns the products with the given IDs in menu order. Unknown IDs are ignored.
func (s *ProductService) GetMany(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE id = ANY($1)
		 ORDER BY category, sort_order, name, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// List returns products in menu order (category, sort order, name). The cursor
// is the ID of the last product of the previous page.
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]model.Product, bool, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	argIdx := 1

	if f.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, f.Category)
		argIdx++
	}
	if f.Available != nil {
		query += fmt.Sprintf(` AND available = $%d`, argIdx)
		args = append(args, *f.Available)
		argIdx++
	}
	if f.Search != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d`, argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	if f.Cursor != "" {
		query += fmt.Sprintf(` AND (category, sort_order, name, id) >
			(SELECT category, sort_order, name, id FROM products WHERE id = $%d)`, argIdx)
		args = append(args, f.Cursor)
		argIdx++
	}

	query += ` ORDER BY category, sort_order, name, id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, f.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list products: %w", classify(err))
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, false, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate products: %w", classify(err))
	}

	hasMore := len(products) > f.Limit
	if hasMore {
		products = products[:f.Limit]
	}
	return products, hasMore, nil
}

// Update saves the descriptive fields of a product. Prices and bounds are
// changed through PricingService so every movement is recorded.
func (s *ProductService) Update(ctx context.Context, p *model.Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE products SET name = $1, category = $2, description = $3, image_url = $4,
		 base_price = $5, available = $6, sort_order = $7, updated_at = now()
		 WHERE id = $8`,
		p.Name, p.Category, p.Description, p.ImageURL, p.BasePrice, p.Available, p.SortOrder, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete product %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListCategories returns every category with its product count, alphabetically.
func (s *ProductService) ListCategories(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := s.db.Query(ctx,
		`SELECT category, COUNT(*) FROM products GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.CategoryCount
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Name, &c.Products); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ExistingNames returns the product names in use, keyed by category.
func (s *ProductService) ExistingNames(ctx context.Context) (map[string]map[string]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT category, name FROM products`)
	if err != nil {
		return nil, fmt.Errorf("list product names: %w", err)
	}
	defer rows.Close()

	names := map[string]map[string]bool{}
	for rows.Next() {
		var category, name string
		if err := rows.Scan(&category, &name); err != nil {
			return nil, fmt.Errorf("scan product name: %w", err)
		}
		if names[category] == nil {
			names[category] = map[string]bool{}
		}
		names[category][name] = true
	}
	return names, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner, p *model.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.ImageURL,
		&p.BasePrice, &p.Price, &p.MinPrice, &p.MaxPrice, &p.Available, &p.SortOrder,
		&p.CreatedAt, &p.UpdatedAt)
}

package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/djcafe/cafe/internal/model"
)

type ProductCreator interface {
	ExistingNames(ctx context.Context) (map[string]map[string]bool, error)
	Create(ctx context.Context, p *model.Product) error
}

type TableCreator interface {
	ExistingNumbers(ctx context.Context) (map[int]bool, error)
	Create(ctx context.Context, t *model.Table) error
}

type Result struct {
	ProductsCreated int
	ProductsSkipped int
	TablesCreated   int
	TablesSkipped   int
}

// Apply creates the menu's products and tables. Tables whose number exists
// and products whose name exists in their category are skipped.
func Apply(ctx context.Context, m *Menu, products ProductCreator, tables TableCreator, logger zerolog.Logger) (Result, error) {
	var res Result

	names, err := products.ExistingNames(ctx)
	if err != nil {
		return res, err
	}
	for _, e := range m.Products {
		p := e.Product()
		if names[p.Category][p.Name] {
			logger.Info().Str("category", p.Category).Str("name", p.Name).Msg("product exists, skipping")
			res.ProductsSkipped++
			continue
		}
		if err := products.Create(ctx, p); err != nil {
			return res, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		logger.Info().Str("id", p.ID).Str("category", p.Category).Str("name", p.Name).Msg("product created")
		res.ProductsCreated++
	}

	numbers, err := tables.ExistingNumbers(ctx)
	if err != nil {
		return res, err
	}
	for _, e := range m.Tables {
		if numbers[e.Number] {
			logger.Info().Int("number", e.Number).Msg("table exists, skipping")
			res.TablesSkipped++
			continue
		}
		t := e.Table()
		if err := tables.Create(ctx, t); err != nil {
			return res, fmt.Errorf("seed table %d: %w", e.Number, err)
		}
		logger.Info().Str("id", t.ID).Int("number", t.Number).Msg("table created")
		res.TablesCreated++
	}

	return res, nil
}

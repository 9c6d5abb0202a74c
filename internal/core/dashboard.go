package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/djcafe/cafe/internal/model"
)

type DashboardService struct {
	db DB
}

func NewDashboardService(db DB) *DashboardService {
	return &DashboardService{db: db}
}

// Summary gathers the dashboard counters concurrently.
func (s *DashboardService) Summary(ctx context.Context) (*model.Dashboard, error) {
	d := &model.Dashboard{Tables: map[string]int{}}
	for _, st := range model.TableStatuses {
		d.Tables[st] = 0
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.db.QueryRow(ctx,
			`SELECT COUNT(*), COUNT(*) FILTER (WHERE available) FROM products`,
		).Scan(&d.Products, &d.AvailableProducts)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		return nil
	})

	tables := map[string]int{}
	g.Go(func() error {
		rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM tables GROUP BY status`)
		if err != nil {
			return fmt.Errorf("count tables: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return fmt.Errorf("scan table count: %w", err)
			}
			tables[status] = n
		}
		return rows.Err()
	})

	g.Go(func() error {
		err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns WHERE active`).Scan(&d.ActiveCampaigns)
		if err != nil {
			return fmt.Errorf("count campaigns: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM price_changes WHERE changed_at > now() - interval '1 hour'`,
		).Scan(&d.PriceChangesLastHr)
		if err != nil {
			return fmt.Errorf("count price changes: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for st, n := range tables {
		d.Tables[st] = n
	}
	return d, nil
}

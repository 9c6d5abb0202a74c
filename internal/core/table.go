package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/djcafe/cafe/internal/model"
)

const tableColumns = `id, number, name, seats, status, created_at, updated_at`

type TableService struct {
	db DB
}

func NewTableService(db DB) *TableService {
	return &TableService{db: db}
}

// ValidateTable checks table numbering, seating and status.
func ValidateTable(t *model.Table) error {
	if t.Number < 1 || t.Number > 999 {
		return invalid("number", "must be between 1 and 999")
	}
	if t.Seats < 1 || t.Seats > 50 {
		return invalid("seats", "must be between 1 and 50")
	}
	if !model.ValidTableStatus(t.Status) {
		return invalid("status", "must be one of %v", model.TableStatuses)
	}
	return nil
}

func (s *TableService) Create(ctx context.Context, t *model.Table) error {
	if t.Status == "" {
		t.Status = model.TableFree
	}
	if err := ValidateTable(t); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := s.db.Exec(ctx,
		`INSERT INTO tables (`+tableColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Number, t.Name, t.Seats, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create table %d: %w", t.Number, classify(err))
	}
	return nil
}

func (s *TableService) GetByID(ctx context.Context, id string) (*model.Table, error) {
	var t model.Table
	err := s.db.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = $1`, id,
	).Scan(&t.ID, &t.Number, &t.Name, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get table %s: %w", id, classify(err))
	}
	return &t, nil
}

// List returns all tables ordered by number, optionally only those with the given status.
func (s *TableService) List(ctx context.Context, status string) ([]model.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY number`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Name, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// ExistingNumbers returns the set of table numbers already in use.
func (s *TableService) ExistingNumbers(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT number FROM tables`)
	if err != nil {
		return nil, fmt.Errorf("list table numbers: %w", err)
	}
	defer rows.Close()

	numbers := map[int]bool{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan table number: %w", err)
		}
		numbers[n] = true
	}
	return numbers, rows.Err()
}

func (s *TableService) Update(ctx context.Context, t *model.Table) error {
	if err := ValidateTable(t); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE tables SET number = $1, name = $2, seats = $3, status = $4, updated_at = now() WHERE id = $5`,
		t.Number, t.Name, t.Seats, t.Status, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update table %s: %w", t.ID, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update table %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (s *TableService) SetStatus(ctx context.Context, id, status string) error {
	if !model.ValidTableStatus(status) {
		return invalid("status", "must be one of %v", model.TableStatuses)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE tables SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set table %s status: %w", id, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set table %s status: %w", id, ErrNotFound)
	}
	return nil
}

func (s *TableService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM tables WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete table %s: %w", id, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete table %s: %w", id, ErrNotFound)
	}
	return nil
}

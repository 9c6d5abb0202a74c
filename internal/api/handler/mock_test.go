package handler

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/djcafe/cafe/internal/model"
)

// handlerMockDB implements core.DB for handler tests.
type handlerMockDB struct {
	mock.Mock
}

func (m *handlerMockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *handlerMockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *handlerMockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

func sqlContains(fragment string) any {
	return mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, fragment) })
}

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error { return m.scanFunc(dest...) }

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(...any) error { return err }}
}

type mockRows struct {
	idx   int
	scans []func(dest ...any) error
}

func newMockRows(scans ...func(dest ...any) error) *mockRows {
	return &mockRows{scans: scans}
}

func (m *mockRows) Next() bool { return m.idx < len(m.scans) }

func (m *mockRows) Scan(dest ...any) error {
	fn := m.scans[m.idx]
	m.idx++
	return fn(dest...)
}

func (m *mockRows) Err() error                                   { return nil }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

var fixedTime = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func latte(id string) model.Product {
	return model.Product{
		ID:        id,
		Name:      "Latte",
		Category:  "coffee",
		BasePrice: 350,
		Price:     350,
		MinPrice:  300,
		MaxPrice:  600,
		Available: true,
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}
}

func productRow(p model.Product) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = p.ID
		*(dest[1].(*string)) = p.Name
		*(dest[2].(*string)) = p.Category
		*(dest[3].(**string)) = p.Description
		*(dest[4].(**string)) = p.ImageURL
		*(dest[5].(*int64)) = p.BasePrice
		*(dest[6].(*int64)) = p.Price
		*(dest[7].(*int64)) = p.MinPrice
		*(dest[8].(*int64)) = p.MaxPrice
		*(dest[9].(*bool)) = p.Available
		*(dest[10].(*int)) = p.SortOrder
		*(dest[11].(*time.Time)) = p.CreatedAt
		*(dest[12].(*time.Time)) = p.UpdatedAt
		return nil
	}
}

func campaignRow(c model.Campaign) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = c.ID
		*(dest[1].(*string)) = c.Title
		*(dest[2].(**string)) = c.VideoKey
		*(dest[3].(*int)) = c.CountdownSeconds
		*(dest[4].(*int)) = c.VideoSeconds
		*(dest[5].(*int)) = c.HighlightSeconds
		*(dest[6].(*[]string)) = c.HighlightProductIDs
		*(dest[7].(**string)) = c.Schedule
		*(dest[8].(*bool)) = c.Active
		*(dest[9].(*time.Time)) = c.CreatedAt
		*(dest[10].(*time.Time)) = c.UpdatedAt
		return nil
	}
}

func tableRow(t model.Table) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = t.ID
		*(dest[1].(*int)) = t.Number
		*(dest[2].(**string)) = t.Name
		*(dest[3].(*int)) = t.Seats
		*(dest[4].(*string)) = t.Status
		*(dest[5].(*time.Time)) = t.CreatedAt
		*(dest[6].(*time.Time)) = t.UpdatedAt
		return nil
	}
}

package core

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/djcafe/cafe/internal/model"
)

// mockDB implements the DB interface for testing.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// sqlContains matches a SQL argument containing fragment.
func sqlContains(fragment string) any {
	return mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, fragment) })
}

func containsAll(s string, fragments ...string) bool {
	for _, f := range fragments {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}

func tag(s string) pgconn.CommandTag { return pgconn.NewCommandTag(s) }

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(...any) error { return err }}
}

// mockRows implements pgx.Rows, one scan function per row.
type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

func newEmptyMockRows() *mockRows {
	return &mockRows{}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error                                   { return m.err }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// ---------- row fixtures ----------

var fixedTime = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func scanProductInto(p model.Product) func(dest ...any) error {
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

func scanPriceChangeInto(c model.PriceChange) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = c.ID
		*(dest[1].(*string)) = c.ProductID
		*(dest[2].(*int64)) = c.OldPrice
		*(dest[3].(*int64)) = c.NewPrice
		*(dest[4].(*string)) = c.Reason
		*(dest[5].(*time.Time)) = c.ChangedAt
		return nil
	}
}

func scanCampaignInto(c model.Campaign) func(dest ...any) error {
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

func espresso() model.Product {
	return model.Product{
		ID:        "prod-1",
		Name:      "Espresso",
		Category:  "coffee",
		BasePrice: 250,
		Price:     300,
		MinPrice:  200,
		MaxPrice:  500,
		Available: true,
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}
}

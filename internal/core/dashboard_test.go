package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/djcafe/cafe/internal/model"
)

func TestDashboardService_Summary(t *testing.T) {
	db := &mockDB{}
	svc := NewDashboardService(db)

	db.On("QueryRow", mock.Anything, sqlContains("FROM products"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*int)) = 12
			*(dest[1].(*int)) = 10
			return nil
		}})
	db.On("Query", mock.Anything, sqlContains("FROM tables GROUP BY status"), mock.Anything).
		Return(newMockRows(func(dest ...any) error {
			*(dest[0].(*string)) = model.TableOccupied
			*(dest[1].(*int)) = 3
			return nil
		}), nil)
	db.On("QueryRow", mock.Anything, sqlContains("FROM campaigns"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*int)) = 2
			return nil
		}})
	db.On("QueryRow", mock.Anything, sqlContains("FROM price_changes"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*int)) = 42
			return nil
		}})

	d, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, d.Products)
	assert.Equal(t, 10, d.AvailableProducts)
	assert.Equal(t, map[string]int{model.TableFree: 0, model.TableOccupied: 3, model.TableReserved: 0}, d.Tables)
	assert.Equal(t, 2, d.ActiveCampaigns)
	assert.Equal(t, 42, d.PriceChangesLastHr)
}

func TestDashboardService_Summary_Error(t *testing.T) {
	db := &mockDB{}
	svc := NewDashboardService(db)

	db.On("QueryRow", mock.Anything, sqlContains("FROM products"), mock.Anything).
		Return(errRow(errors.New("db down")))
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(newEmptyMockRows(), nil)
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error { return nil }})

	d, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.Nil(t, d)
	assert.Contains(t, err.Error(), "count products")
}

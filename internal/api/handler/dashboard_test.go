package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/model"
)

func countRow(counts ...int) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		for i, c := range counts {
			*(dest[i].(*int)) = c
		}
		return nil
	}}
}

func TestDashboardSummary(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, sqlContains("FROM products"), mock.Anything).Return(countRow(12, 10))
	db.On("QueryRow", mock.Anything, sqlContains("FROM campaigns"), mock.Anything).Return(countRow(2))
	db.On("QueryRow", mock.Anything, sqlContains("FROM price_changes"), mock.Anything).Return(countRow(7))
	db.On("Query", mock.Anything, sqlContains("FROM tables"), mock.Anything).
		Return(newMockRows(func(dest ...any) error {
			*(dest[0].(*string)) = model.TableOccupied
			*(dest[1].(*int)) = 3
			return nil
		}), nil)
	h := NewDashboard(core.NewDashboardService(db))
	rec := httptest.NewRecorder()

	h.Summary(rec, newRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var d model.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 12, d.Products)
	assert.Equal(t, 10, d.AvailableProducts)
	assert.Equal(t, 2, d.ActiveCampaigns)
	assert.Equal(t, 7, d.PriceChangesLastHr)
	assert.Equal(t, map[string]int{"free": 0, "occupied": 3, "reserved": 0}, d.Tables)
}

func TestDashboardSummary_Error(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(errRow(errors.New("db down")))
	db.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	h := NewDashboard(core.NewDashboardService(db))
	rec := httptest.NewRecorder()

	h.Summary(rec, newRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

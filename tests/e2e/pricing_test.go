package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadiness(t *testing.T) {
	resp, body := httpGet(t, cafeBaseURL+"/readyz")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	checks := parseJSON(t, body)
	assert.Equal(t, "ok", checks["db"])
	assert.Equal(t, "ok", checks["notify"])
}

func TestPriceChangeIsStreamed(t *testing.T) {
	p := createTestProduct(t, "e2e", 300, 200, 500)
	id := p["id"].(string)

	stream := openEventStream(t, cafeAPIURL+"/events/prices")

	resp, body := httpPut(t, cafeAPIURL+"/products/"+id+"/price", map[string]any{"price": 420})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, parseJSON(t, body)["changed"])

	var update struct {
		ProductID string `json:"product_id"`
		Name      string `json:"name"`
		OldPrice  int64  `json:"old_price"`
		NewPrice  int64  `json:"new_price"`
		Reason    string `json:"reason"`
	}
	// Other clients may move prices concurrently; wait for this product.
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, json.Unmarshal([]byte(stream.next(t, 10*time.Second)), &update))
		if update.ProductID == id {
			break
		}
	}
	require.Equal(t, id, update.ProductID)
	assert.Equal(t, p["name"], update.Name)
	assert.Equal(t, int64(300), update.OldPrice)
	assert.Equal(t, int64(420), update.NewPrice)
	assert.Equal(t, "manual", update.Reason)
}

func TestUnchangedPriceIsNotRecorded(t *testing.T) {
	p := createTestProduct(t, "e2e", 300, 200, 500)
	id := p["id"].(string)

	resp, body := httpPut(t, cafeAPIURL+"/products/"+id+"/price", map[string]any{"price": 300})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, false, parseJSON(t, body)["changed"])

	resp, body = httpGet(t, cafeAPIURL+"/products/"+id+"/price-history")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(t, `[]`, body)
}

func TestOutOfBoundsPriceRejected(t *testing.T) {
	p := createTestProduct(t, "e2e", 300, 200, 500)
	id := p["id"].(string)

	resp, body := httpPut(t, cafeAPIURL+"/products/"+id+"/price", map[string]any{"price": 900})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
}

func TestBoundsClampPrice(t *testing.T) {
	p := createTestProduct(t, "e2e", 300, 200, 500)
	id := p["id"].(string)

	resp, body := httpPut(t, cafeAPIURL+"/products/"+id+"/price-bounds", map[string]any{"min_price": 350, "max_price": 600})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	out := parseJSON(t, body)
	product := out["product"].(map[string]any)
	assert.Equal(t, float64(350), product["price"])
	change := out["change"].(map[string]any)
	assert.Equal(t, "bounds", change["reason"])
}

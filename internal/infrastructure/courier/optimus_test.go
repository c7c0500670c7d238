package courier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centavo/internal/domain/delivery"
)

func TestOptimusClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body optimusCreateBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "5551234567", body.Phone)
		assert.Equal(t, "23.65", body.CODAmount)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(optimusOrderBody{TrackingID: "OPT-42", Status: "pending_pickup"})
	}))
	defer srv.Close()

	client := NewOptimusClient(OptimusConfig{BaseURL: srv.URL, APIKey: "test-key"})
	resp, err := client.CreateOrder(context.Background(), delivery.OptimusCreateRequest{
		CustomerName: "U Ba",
		Phone:        "5551234567",
		CityID:       "YGN-01",
		AreaID:       "A-1",
		Address:      "12 Main St",
		Note:         "SKU-1 M/red Acme\nCOD: 23.65",
		CODAmount:    "23.65",
	})
	require.NoError(t, err)
	assert.Equal(t, "OPT-42", resp.TrackingID)
	assert.Equal(t, "pending_pickup", resp.Status)
}

func TestOptimusClient_OrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/OPT-42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(optimusOrderBody{TrackingID: "OPT-42", Status: "IN_TRANSIT"})
	}))
	defer srv.Close()

	client := NewOptimusClient(OptimusConfig{BaseURL: srv.URL, APIKey: "test-key"})
	raw, err := client.OrderStatus(context.Background(), "OPT-42")
	require.NoError(t, err)
	assert.Equal(t, "IN_TRANSIT", raw)
}

func TestOptimusClient_UpstreamErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"city not serviced"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewOptimusClient(OptimusConfig{BaseURL: srv.URL, APIKey: "test-key"})
	_, err := client.CreateOrder(context.Background(), delivery.OptimusCreateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "city not serviced")
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henriquexaud/OrdersAPI/internal/service"
	"github.com/henriquexaud/OrdersAPI/internal/storage"
)

func newTestRouter() http.Handler {
	return NewRouter(service.New(storage.NewMemStore()), zap.NewNop())
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, body := doJSON(t, newTestRouter(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateOrder_CreatedThenExisting(t *testing.T) {
	h := newTestRouter()

	rec, first := doJSON(t, h, http.MethodPost, "/orders",
		`{"orderId":"A-1","customer":"Ada","total":42.50}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "PENDING", first["status"])
	assert.Equal(t, float64(0), first["attempts"])
	assert.Equal(t, 42.50, first["total"])

	// Same orderId, different payload: 200 with the original row.
	rec, second := doJSON(t, h, http.MethodPost, "/orders",
		`{"orderId":"A-1","customer":"Ada","total":99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first["id"], second["id"])
	assert.Equal(t, 42.50, second["total"])
}

func TestCreateOrder_Validation(t *testing.T) {
	h := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"orderId":`},
		{"missing orderId", `{"customer":"Ada","total":10}`},
		{"missing customer", `{"orderId":"A-1","total":10}`},
		{"zero total", `{"orderId":"A-1","customer":"Ada","total":0}`},
		{"negative total", `{"orderId":"A-1","customer":"Ada","total":-5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, h, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestGetOrder(t *testing.T) {
	h := newTestRouter()

	rec, _ := doJSON(t, h, http.MethodGet, "/orders/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/orders",
		`{"orderId":"A-1","customer":"Ada","total":42.50}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := doJSON(t, h, http.MethodGet, "/orders/A-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A-1", body["orderId"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Nil(t, body["lockedAt"])
	assert.Nil(t, body["lastError"])
}

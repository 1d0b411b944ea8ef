package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stockops/inventory-service/internal/adapter/storage"
	"github.com/stockops/inventory-service/internal/core/domain"
	"github.com/stockops/inventory-service/internal/core/service"
)

func newTestServer(items ...domain.InventoryItem) *echo.Echo {
	ledger := storage.NewMemoryAdapter()
	for _, item := range items {
		ledger.Put(item)
	}
	svc := service.NewInventoryService(ledger, nil, nil, nil, service.Config{})

	e := echo.New()
	NewHTTPHandler(svc, ledger, nil).Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func stockItem(sku string, quantity, reserved, threshold int) domain.InventoryItem {
	return domain.InventoryItem{
		SKU:               sku,
		Name:              "Test " + sku,
		Quantity:          quantity,
		Reserved:          reserved,
		Warehouse:         "WH-1",
		LowStockThreshold: threshold,
	}
}

func TestReserveEndpoint_Success(t *testing.T) {
	e := newTestServer(stockItem("SKU-1", 10, 0, 5))

	rec := doJSON(e, http.MethodPost, "/api/v1/inventory/reserve",
		`{"sku":"SKU-1","quantity":4,"order_id":"ORD-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var res domain.Reservation
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if res.ID == "" || res.SKU != "SKU-1" || res.Quantity != 4 {
		t.Errorf("unexpected reservation: %+v", res)
	}
	if !res.ExpiresAt.After(res.CreatedAt) {
		t.Errorf("expiry not after creation: %+v", res)
	}
}

func TestReserveEndpoint_InsufficientStock(t *testing.T) {
	e := newTestServer(stockItem("SKU-1", 10, 7, 5))

	rec := doJSON(e, http.MethodPost, "/api/v1/inventory/reserve",
		`{"sku":"SKU-1","quantity":5,"order_id":"ORD-1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Error != "INSUFFICIENT_STOCK" {
		t.Errorf("unexpected error code: %s", body.Error)
	}
	if body.Available == nil || *body.Available != 3 || body.Requested == nil || *body.Requested != 5 {
		t.Errorf("expected available 3 requested 5 in body: %s", rec.Body)
	}
}

func TestReserveEndpoint_Validation(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/inventory/reserve", `{"sku":"","quantity":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/v1/inventory/reserve", `{"sku":"missing","quantity":1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestReleaseEndpoint(t *testing.T) {
	e := newTestServer(stockItem("SKU-1", 10, 4, 5))

	rec := doJSON(e, http.MethodPost, "/api/v1/inventory/release",
		`{"sku":"SKU-1","quantity":4,"order_id":"ORD-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	// Nothing left to release: over-release and unknown sku share one answer.
	rec = doJSON(e, http.MethodPost, "/api/v1/inventory/release",
		`{"sku":"SKU-1","quantity":1,"order_id":"ORD-1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body)
	}
	var body ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "NOTHING_TO_RELEASE" {
		t.Errorf("unexpected error code: %s", body.Error)
	}
}

func TestAdjustEndpoint(t *testing.T) {
	e := newTestServer(stockItem("SKU-1", 5, 0, 5))

	rec := doJSON(e, http.MethodPost, "/api/v1/inventory/adjust",
		`{"sku":"SKU-1","delta":-100,"reason":"audit correction"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var item domain.InventoryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if item.Quantity != 0 {
		t.Errorf("expected quantity clamped to 0, got %d", item.Quantity)
	}

	rec = doJSON(e, http.MethodPost, "/api/v1/inventory/adjust",
		`{"sku":"SKU-1","delta":0,"reason":"noop"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero delta, got %d", rec.Code)
	}
}

func TestGetBySKUEndpoint(t *testing.T) {
	e := newTestServer(stockItem("SKU-1", 10, 2, 5))

	rec := doJSON(e, http.MethodGet, "/api/v1/inventory/SKU-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var item domain.InventoryItem
	json.Unmarshal(rec.Body.Bytes(), &item)
	if item.SKU != "SKU-1" || item.Reserved != 2 {
		t.Errorf("unexpected item: %+v", item)
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/inventory/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestListEndpoint(t *testing.T) {
	e := newTestServer(
		stockItem("SKU-B", 10, 0, 5),
		stockItem("SKU-A", 10, 0, 5),
	)

	rec := doJSON(e, http.MethodGet, "/api/v1/inventory?page=1&per_page=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var body ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Total != 2 || len(body.Items) != 1 || body.Items[0].SKU != "SKU-A" {
		t.Errorf("unexpected list: %+v", body)
	}
}

func TestAlertsEndpoint(t *testing.T) {
	e := newTestServer(
		stockItem("SKU-A", 10, 8, 5), // available 2
		stockItem("SKU-B", 10, 0, 5), // available 10
	)

	rec := doJSON(e, http.MethodGet, "/api/v1/inventory/alerts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var alerts []domain.LowStockAlert
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(alerts) != 1 || alerts[0].SKU != "SKU-A" || alerts[0].Available != 2 {
		t.Errorf("unexpected alerts: %+v", alerts)
	}
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestServer()

	if rec := doJSON(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", rec.Code)
	}
	// The memory ledger always pings; the cache is disabled but that does
	// not make the service unready.
	if rec := doJSON(e, http.MethodGet, "/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /ready, got %d", rec.Code)
	}
}

// unreachableCache is a configured cache whose backend is down.
type unreachableCache struct{}

func (unreachableCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("cache down")
}

func (unreachableCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache down")
}

func (unreachableCache) Delete(ctx context.Context, key string) error {
	return errors.New("cache down")
}

func (unreachableCache) Ping(ctx context.Context) error {
	return errors.New("cache down")
}

func TestReadyEndpoint_CacheDown(t *testing.T) {
	ledger := storage.NewMemoryAdapter()
	cache := unreachableCache{}
	svc := service.NewInventoryService(ledger, cache, nil, nil, service.Config{})

	e := echo.New()
	NewHTTPHandler(svc, ledger, cache).Register(e)

	rec := doJSON(e, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with cache down, got %d: %s", rec.Code, rec.Body)
	}

	var body struct {
		Status string          `json:"status"`
		Checks map[string]bool `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Status != "not_ready" {
		t.Errorf("expected status not_ready, got %s", body.Status)
	}
	if body.Checks["cache"] || !body.Checks["database"] {
		t.Errorf("unexpected checks: %+v", body.Checks)
	}
}

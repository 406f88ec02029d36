package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmonitor/backend/internal/domain"
	"shopmonitor/backend/internal/service"
	"shopmonitor/backend/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *AuthManager) {
	t.Helper()
	repo := memory.NewSeeded()
	auth := NewAuthManager(repo, "test-secret", time.Hour, nil)
	require.NoError(t, auth.Bootstrap(context.Background()))
	svc := service.New(repo, nil, 0, nil)
	return NewServer(svc, auth, "*", nil), auth
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListProducts(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/inventory", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Products []domain.Product `json:"products"`
	}
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Products, 8)
}

func TestProductLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/inventory", domain.ProductRequest{
		Name: "USB-C Hub", Category: "Accessories", Quantity: 4, Price: 39.99,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &created)
	require.NotZero(t, created.ID)

	rec = doJSON(t, router, http.MethodPut, "/api/inventory/9", domain.ProductRequest{
		Name: "USB-C Hub", Category: "Accessories", Quantity: 2, Price: 29.99,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/inventory/9", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/inventory/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductRejectsUnknownFields(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/inventory", map[string]any{
		"name": "X", "price": 1, "bogus": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidPathID(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/inventory/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCustomerReturnsNoContent(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodDelete, "/api/customers/7", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListInvoicesPayload(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/invoices", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.InvoiceListResponse
	decodeBody(t, rec, &resp)

	require.Len(t, resp.Invoices, 2)
	assert.Equal(t, "INV-001", resp.Invoices[0].InvoiceNumber)
	assert.Equal(t, "John Doe", resp.Invoices[0].CustomerName)
	// Seed invoices carry no stored status and are dated in the past.
	assert.Equal(t, domain.InvoiceStatusOverdue, resp.Invoices[0].Status)
	assert.Equal(t, 2, resp.Metrics.TotalInvoices)
	assert.InDelta(t, 2799.97, resp.Metrics.OverdueAmount, 1e-6)
}

func TestInvoiceValidationSurfacesAs400(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/invoices", domain.InvoiceRequest{
		Total: -5, InvoiceDate: "2024-01-10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/analytics/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sales map[string]json.RawMessage
	decodeBody(t, rec, &sales)
	for _, key := range []string{"monthlySales", "topProducts", "salesMetrics", "monthlyGrowth"} {
		assert.Contains(t, sales, key)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/analytics/inventory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inventory map[string]json.RawMessage
	decodeBody(t, rec, &inventory)
	for _, key := range []string{"summary", "categories", "stockLevels", "inventoryGrowth"} {
		assert.Contains(t, inventory, key)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/analytics/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var customers map[string]json.RawMessage
	decodeBody(t, rec, &customers)
	for _, key := range []string{"summary", "topCustomers", "customerMetrics", "ageDistribution", "customerGrowth"} {
		assert.Contains(t, customers, key)
	}
}

func TestPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/inventory", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/login", domain.LoginRequest{
		Username: "admin", Password: "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.LoginResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "admin", resp.Role)
	assert.NotEmpty(t, resp.AccessToken)

	rec = doJSON(t, router, http.MethodPost, "/api/login", domain.LoginRequest{
		Username: "admin", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken(t *testing.T) {
	srv, auth := newTestServer(t)
	router := srv.Router()

	login, err := auth.Login(context.Background(), "john_doe", "john123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

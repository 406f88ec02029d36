package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmonitor/backend/internal/domain"
	"shopmonitor/backend/internal/store"
	"shopmonitor/backend/internal/store/memory"
)

var testToday = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo store.Repository) *Service {
	t.Helper()
	svc := New(repo, nil, 0, nil)
	svc.now = func() time.Time { return testToday }
	return svc
}

// mapCache is an in-process AnalyticsCache for asserting read-through
// behavior without a Redis instance.
type mapCache struct {
	entries map[string][]byte
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	payload, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = payload
	c.sets++
	return nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t, memory.New())

	_, err := svc.CreateProduct(context.Background(), domain.ProductRequest{Name: "", Price: 10})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	_, err = svc.CreateProduct(context.Background(), domain.ProductRequest{Name: "Widget", Price: -1})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	_, err = svc.CreateProduct(context.Background(), domain.ProductRequest{Name: "Widget", Quantity: -2})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	product, err := svc.CreateProduct(context.Background(), domain.ProductRequest{Name: "Widget", Quantity: 3, Price: 9.99})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
}

func TestCreateCustomerDerivesInitials(t *testing.T) {
	svc := newTestService(t, memory.New())

	customer, err := svc.CreateCustomer(context.Background(), domain.CustomerRequest{
		Name:  "  Maria de la Cruz ",
		Email: "maria@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Maria de la Cruz", customer.Name)
	assert.Equal(t, "MDLC", customer.Initials)
	assert.Equal(t, domain.CustomerStatusActive, customer.Status)
}

func TestUpdateCustomerResyncsInitials(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo)

	created, err := svc.CreateCustomer(context.Background(), domain.CustomerRequest{
		Name:  "John Doe",
		Email: "john@example.com",
	})
	require.NoError(t, err)

	err = svc.UpdateCustomer(context.Background(), created.ID, domain.CustomerRequest{
		Name:  "Jane Roe",
		Email: "jane@example.com",
	})
	require.NoError(t, err)

	updated, err := repo.GetCustomer(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "JR", updated.Initials)
	assert.Equal(t, "jane@example.com", updated.Email)
}

func TestCreateCustomerRejectsBadEmail(t *testing.T) {
	svc := newTestService(t, memory.New())

	_, err := svc.CreateCustomer(context.Background(), domain.CustomerRequest{Name: "X", Email: "not-an-email"})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
}

func TestRecordCustomerPurchase(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo)

	created, err := svc.CreateCustomer(context.Background(), domain.CustomerRequest{
		Name:  "Ann Lee",
		Email: "ann@example.com",
	})
	require.NoError(t, err)

	when := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.RecordCustomerPurchase(context.Background(), created.ID, 49.50, when))

	updated, err := repo.GetCustomer(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Orders)
	assert.InDelta(t, 49.50, updated.TotalSpent, 1e-9)
	assert.Equal(t, "Mar 2, 2024", updated.LastPurchase)
}

func TestListCustomersProjection(t *testing.T) {
	repo := memory.New()
	_, err := repo.CreateCustomer(context.Background(), domain.Customer{
		Name:  "Solo NoPhone",
		Email: "solo@example.com",
	})
	require.NoError(t, err)

	svc := newTestService(t, repo)
	views, err := svc.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.Equal(t, "SN", views[0].Initials)
	assert.Equal(t, "N/A", views[0].Phone)
	assert.Equal(t, "N/A", views[0].LastPurchase)
	assert.Equal(t, domain.CustomerStatusActive, views[0].Status)
}

func TestCreateInvoiceDefaultsToPending(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo)

	created, err := svc.CreateInvoice(context.Background(), domain.InvoiceRequest{
		Total:       100,
		InvoiceDate: "2024-01-10",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPending, created.Status)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc := newTestService(t, memory.New())
	ctx := context.Background()

	cases := []domain.InvoiceRequest{
		{Total: 10},                                              // missing date
		{Total: 10, InvoiceDate: "01/10/2024"},                   // wrong layout
		{Total: -1, InvoiceDate: "2024-01-10"},                   // negative total
		{Total: 10, Discount: -5, InvoiceDate: "2024-01-10"},     // negative discount
		{Total: 10, InvoiceDate: "2024-01-10", DueDate: "later"}, // bad due date
		{Total: 10, InvoiceDate: "2024-01-10", Status: "Weird"},  // unknown status
	}
	for _, req := range cases {
		_, err := svc.CreateInvoice(ctx, req)
		assert.ErrorIs(t, err, store.ErrInvalidRecord)
	}
}

func TestListInvoicesProjectsAndAggregates(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	customer, err := repo.CreateCustomer(ctx, domain.Customer{Name: "Billed Co", Email: "b@example.com"})
	require.NoError(t, err)

	_, err = repo.CreateInvoice(ctx, domain.Invoice{CustomerID: &customer.ID, Total: 100, InvoiceDate: "2023-12-01"})
	require.NoError(t, err)
	_, err = repo.CreateInvoice(ctx, domain.Invoice{Total: 50, InvoiceDate: "2024-02-01"})
	require.NoError(t, err)
	_, err = repo.CreateInvoice(ctx, domain.Invoice{Total: 30, InvoiceDate: "2024-01-01", Status: domain.InvoiceStatusPaid})
	require.NoError(t, err)

	svc := newTestService(t, repo)
	resp, err := svc.ListInvoices(ctx)
	require.NoError(t, err)

	require.Len(t, resp.Invoices, 3)
	assert.Equal(t, "INV-001", resp.Invoices[0].InvoiceNumber)
	assert.Equal(t, "Billed Co", resp.Invoices[0].CustomerName)
	assert.Equal(t, domain.InvoiceStatusOverdue, resp.Invoices[0].Status)
	assert.Equal(t, domain.InvoiceStatusPending, resp.Invoices[1].Status)
	assert.Empty(t, resp.Invoices[1].CustomerName)

	assert.Equal(t, domain.InvoiceMetrics{
		TotalRevenue:  30,
		PendingAmount: 50,
		OverdueAmount: 100,
		TotalInvoices: 3,
	}, resp.Metrics)
}

func TestGetInvoiceNotFound(t *testing.T) {
	svc := newTestService(t, memory.New())

	_, err := svc.GetInvoice(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSalesAnalyticsCaching(t *testing.T) {
	repo := memory.NewSeeded()
	cached := newMapCache()
	svc := New(repo, cached, 30*time.Second, nil)
	svc.now = func() time.Time { return testToday }

	first, err := svc.SalesAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cached.sets)

	// Second call must be served from the cache, not rebuilt.
	second, err := svc.SalesAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cached.sets)
	assert.Equal(t, first, second)
}

func TestAnalyticsWithCacheDisabled(t *testing.T) {
	svc := newTestService(t, memory.NewSeeded())
	ctx := context.Background()

	inventory, err := svc.InventoryAnalytics(ctx)
	require.NoError(t, err)
	require.Len(t, inventory.Summary, 1)
	assert.Equal(t, 8, inventory.Summary[0].TotalProducts)

	customers, err := svc.CustomerAnalytics(ctx)
	require.NoError(t, err)
	require.Len(t, customers.Summary, 1)
	assert.Equal(t, 7, customers.Summary[0].TotalCustomers)
}

func TestEmployeeCRUD(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.CreateEmployee(ctx, domain.EmployeeRequest{Name: "A", Role: ""})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	created, err := svc.CreateEmployee(ctx, domain.EmployeeRequest{Name: "Alice Brown", Role: "Manager"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateEmployee(ctx, created.ID, domain.EmployeeRequest{
		Name: "Alice Brown", Role: "Director", Performance: "Excellent",
	}))

	employees, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Director", employees[0].Role)

	require.NoError(t, svc.DeleteEmployee(ctx, created.ID))
	err = svc.DeleteEmployee(ctx, created.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

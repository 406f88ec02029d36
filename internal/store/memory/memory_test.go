package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmonitor/backend/internal/domain"
	"shopmonitor/backend/internal/store"
)

func TestSeededDataset(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 8)

	customers, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 7)

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Len(t, sales, 7)

	employees, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 2)

	invoices, err := s.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Len(t, invoices, 2)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestListOrderIsStable(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.CreateProduct(ctx, domain.Product{Name: name, Price: 1})
		require.NoError(t, err)
	}

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "first", products[0].Name)
	assert.Equal(t, "second", products[1].Name)
	assert.Equal(t, "third", products[2].Name)
}

func TestProductCRUDRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateProduct(ctx, domain.Product{Name: "Widget", Quantity: 3, Price: 9.99})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	created.Quantity = 1
	require.NoError(t, s.UpdateProduct(ctx, *created))

	got, err := s.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)

	require.NoError(t, s.DeleteProduct(ctx, created.ID))
	_, err = s.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateCustomer(ctx, domain.Customer{Name: "Ann", Email: "a@example.com"})
	require.NoError(t, err)

	got, err := s.GetCustomer(ctx, created.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := s.GetCustomer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Name)
}

func TestInvalidRecordsRejected(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateProduct(ctx, domain.Product{Name: "", Price: 1})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	_, err = s.CreateInvoice(ctx, domain.Invoice{Total: -1, InvoiceDate: "2024-01-01"})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	err = s.CreateUser(ctx, domain.UserAccount{Username: "", Password: "x"})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
}

func TestCreateUserDuplicate(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, domain.UserAccount{Username: "Eve", Password: "pw"}))
	err := s.CreateUser(ctx, domain.UserAccount{Username: "eve", Password: "pw"})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
}

func TestUpdateMissingRecord(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdateEmployee(ctx, domain.Employee{ID: 5, Name: "A", Role: "B"}), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteInvoice(ctx, 5), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateUserPassword(ctx, "nobody", "pw"), store.ErrNotFound)
}

// Package memory is an in-memory Repository used for dev/demo mode and
// tests. NewSeeded loads the same sample rows the database migrations
// seed, so both backends start from an identical dataset.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"shopmonitor/backend/internal/domain"
	"shopmonitor/backend/internal/store"
)

type Store struct {
	mu        sync.RWMutex
	products  map[int64]domain.Product
	sales     map[int64]domain.Sale
	customers map[int64]domain.Customer
	employees map[int64]domain.Employee
	invoices  map[int64]domain.Invoice
	users     map[string]domain.UserAccount
	nextID    map[string]int64
}

func New() *Store {
	return &Store{
		products:  make(map[int64]domain.Product),
		sales:     make(map[int64]domain.Sale),
		customers: make(map[int64]domain.Customer),
		employees: make(map[int64]domain.Employee),
		invoices:  make(map[int64]domain.Invoice),
		users:     make(map[string]domain.UserAccount),
		nextID:    make(map[string]int64),
	}
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	// Seed users are stored with plain-text dev passwords on purpose: the
	// auth manager upgrades legacy plain-text credentials to bcrypt hashes
	// on bootstrap, the same path the seeded database rows go through.
	for _, u := range []domain.UserAccount{
		{Username: "admin", Password: "password123", Role: "admin", Active: true, CreatedAt: now},
		{Username: "john_doe", Password: "john123", Role: "user", Active: true, CreatedAt: now},
	} {
		s.users[u.Username] = u
	}

	for _, p := range []domain.Product{
		{Name: "iPhone 14 Pro", Category: "Electronics", Quantity: 2, Price: 999.99, ExpirationDate: "2025-12-31"},
		{Name: "Samsung Galaxy S22", Category: "Electronics", Quantity: 5, Price: 799.99, ExpirationDate: "2025-11-30"},
		{Name: "Sony WH-1000XM4", Category: "Audio", Quantity: 0, Price: 349.99, ExpirationDate: "2025-10-31"},
		{Name: `MacBook Pro 16"`, Category: "Computers", Quantity: 8, Price: 2399.99, ExpirationDate: "2026-01-31"},
		{Name: "iPad Air", Category: "Tablets", Quantity: 12, Price: 599.99, ExpirationDate: "2025-12-15"},
		{Name: "Apple Watch Series 8", Category: "Wearables", Quantity: 3, Price: 399.99, ExpirationDate: "2025-11-30"},
		{Name: "AirPods Pro", Category: "Audio", Quantity: 7, Price: 249.99, ExpirationDate: "2025-10-31"},
		{Name: "Dell XPS 13", Category: "Computers", Quantity: 6, Price: 1199.99, ExpirationDate: "2026-01-15"},
	} {
		p.ID = s.allocateID("products")
		s.products[p.ID] = p
	}

	for _, c := range []domain.Customer{
		{Name: "John Doe", Email: "john.doe@example.com", Phone: "(555) 123-4567", Initials: "JD", Orders: 8, TotalSpent: 129.99, LastPurchase: "Jul 5, 2023", Status: "Active"},
		{Name: "Jane Smith", Email: "jane.smith@example.com", Phone: "(555) 987-6543", Initials: "JS", Orders: 5, TotalSpent: 89.50, LastPurchase: "Jun 20, 2023", Status: "Active"},
		{Name: "Robert Johnson", Email: "robert.johnson@example.com", Phone: "(555) 765-4321", Initials: "RJ", Orders: 2, TotalSpent: 34.99, LastPurchase: "Jul 5, 2023", Status: "Active"},
		{Name: "Emily Davis", Email: "emily.davis@example.com", Phone: "(555) 234-5678", Initials: "ED", Orders: 3, TotalSpent: 49.99, LastPurchase: "Jun 30, 2023", Status: "Inactive"},
		{Name: "Michael Wilson", Email: "michael.wilson@example.com", Phone: "(555) 876-5432", Initials: "MW", Orders: 6, TotalSpent: 149.99, LastPurchase: "Jul 12, 2023", Status: "Active"},
		{Name: "Sarah Thompson", Email: "sarah.thompson@example.com", Phone: "(555) 345-6789", Initials: "ST", Orders: 1, TotalSpent: 12.99, LastPurchase: "Jun 15, 2023", Status: "Inactive"},
		{Name: "David Miller", Email: "david.miller@example.com", Phone: "N/A", Initials: "DM", Orders: 4, TotalSpent: 79.99, LastPurchase: "Jul 8, 2023", Status: "Active"},
	} {
		c.ID = s.allocateID("customers")
		s.customers[c.ID] = c
	}

	for _, sale := range []domain.Sale{
		{CustomerID: 1, ProductID: 1, Quantity: 2, Total: 1999.98, SaleDate: "2023-07-15", Status: "Completed"},
		{CustomerID: 2, ProductID: 2, Quantity: 1, Total: 799.99, SaleDate: "2023-07-14", Status: "Completed"},
		{CustomerID: 3, ProductID: 3, Quantity: 1, Total: 349.99, SaleDate: "2023-07-14", Status: "Pending"},
		{CustomerID: 4, ProductID: 4, Quantity: 3, Total: 7199.97, SaleDate: "2023-07-13", Status: "Refunded"},
		{CustomerID: 5, ProductID: 5, Quantity: 2, Total: 1199.98, SaleDate: "2023-07-13", Status: "Completed"},
		{CustomerID: 6, ProductID: 6, Quantity: 1, Total: 399.99, SaleDate: "2023-07-12", Status: "Canceled"},
		{CustomerID: 7, ProductID: 7, Quantity: 2, Total: 499.98, SaleDate: "2023-07-12", Status: "Completed"},
	} {
		sale.ID = s.allocateID("sales")
		s.sales[sale.ID] = sale
	}

	for _, e := range []domain.Employee{
		{Name: "Alice Brown", Role: "Manager", Performance: "Excellent"},
		{Name: "Bob Green", Role: "Sales", Performance: "Good"},
	} {
		e.ID = s.allocateID("employees")
		s.employees[e.ID] = e
	}

	one, two := int64(1), int64(2)
	for _, inv := range []domain.Invoice{
		{CustomerID: &one, Total: 1999.98, Discount: 0, InvoiceDate: "2023-07-15"},
		{CustomerID: &two, Total: 799.99, Discount: 50, InvoiceDate: "2023-07-14"},
	} {
		inv.ID = s.allocateID("invoices")
		s.invoices[inv.ID] = inv
	}

	return s
}

// allocateID assumes s.mu is held (or the store is not yet shared).
func (s *Store) allocateID(entity string) int64 {
	s.nextID[entity]++
	return s.nextID[entity]
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) })
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Quantity < 0 || product.Price < 0 {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = s.allocateID("products")
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) error {
	if product.Name == "" || product.Quantity < 0 || product.Price < 0 {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return store.ErrNotFound
	}
	s.products[product.ID] = product
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		sales = append(sales, sale)
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int { return cmp.Compare(a.ID, b.ID) })
	return sales, nil
}

func (s *Store) GetSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := sale
	return &copied, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c)
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int { return cmp.Compare(a.ID, b.ID) })
	return customers, nil
}

func (s *Store) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := c
	return &copied, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" || customer.Email == "" {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer.ID = s.allocateID("customers")
	s.customers[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) error {
	if customer.Name == "" || customer.Email == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.ID]; !ok {
		return store.ErrNotFound
	}
	s.customers[customer.ID] = customer
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}

func (s *Store) ListEmployees(_ context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees := make([]domain.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		employees = append(employees, e)
	}
	slices.SortFunc(employees, func(a, b domain.Employee) int { return cmp.Compare(a.ID, b.ID) })
	return employees, nil
}

func (s *Store) GetEmployee(_ context.Context, id int64) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := e
	return &copied, nil
}

func (s *Store) CreateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	if employee.Name == "" || employee.Role == "" {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	employee.ID = s.allocateID("employees")
	s.employees[employee.ID] = employee
	created := employee
	return &created, nil
}

func (s *Store) UpdateEmployee(_ context.Context, employee domain.Employee) error {
	if employee.Name == "" || employee.Role == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[employee.ID]; !ok {
		return store.ErrNotFound
	}
	s.employees[employee.ID] = employee
	return nil
}

func (s *Store) DeleteEmployee(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

func (s *Store) ListInvoices(_ context.Context) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoices := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		invoices = append(invoices, inv)
	}
	slices.SortFunc(invoices, func(a, b domain.Invoice) int { return cmp.Compare(a.ID, b.ID) })
	return invoices, nil
}

func (s *Store) GetInvoice(_ context.Context, id int64) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := inv
	return &copied, nil
}

func (s *Store) CreateInvoice(_ context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	if invoice.InvoiceDate == "" || invoice.Total < 0 || invoice.Discount < 0 {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	invoice.ID = s.allocateID("invoices")
	s.invoices[invoice.ID] = invoice
	created := invoice
	return &created, nil
}

func (s *Store) UpdateInvoice(_ context.Context, invoice domain.Invoice) error {
	if invoice.InvoiceDate == "" || invoice.Total < 0 || invoice.Discount < 0 {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[invoice.ID]; !ok {
		return store.ErrNotFound
	}
	s.invoices[invoice.ID] = invoice
	return nil
}

func (s *Store) DeleteInvoice(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || user.Password == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return store.ErrInvalidRecord
	}
	user.Username = username
	s.users[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.users[username] = user
	return nil
}

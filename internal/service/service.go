// Package service holds the business layer between the HTTP handlers and
// the store: request validation, derived-field upkeep, invoice projection
// and the analytics fan-out with its read-through cache.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shopmonitor/backend/internal/analytics"
	"shopmonitor/backend/internal/cache"
	"shopmonitor/backend/internal/domain"
	"shopmonitor/backend/internal/store"
)

const (
	cacheKeySalesAnalytics     = "analytics:sales"
	cacheKeyInventoryAnalytics = "analytics:inventory"
	cacheKeyCustomerAnalytics  = "analytics:customers"
)

type Service struct {
	repo     store.Repository
	cache    cache.AnalyticsCache
	cacheTTL time.Duration
	logger   *zap.Logger

	// now is swapped out in tests to pin "today" for status derivation.
	now func() time.Time
}

func New(repo store.Repository, analyticsCache cache.AnalyticsCache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if analyticsCache == nil {
		analyticsCache = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		cache:    analyticsCache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductRequest) (*domain.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	return s.repo.CreateProduct(ctx, domain.Product{
		Name:           strings.TrimSpace(req.Name),
		Category:       strings.TrimSpace(req.Category),
		Quantity:       req.Quantity,
		Price:          req.Price,
		ExpirationDate: req.ExpirationDate,
	})
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductRequest) error {
	if err := validateProduct(req); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, domain.Product{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		Category:       strings.TrimSpace(req.Category),
		Quantity:       req.Quantity,
		Price:          req.Price,
		ExpirationDate: req.ExpirationDate,
	})
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.CustomerView, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.CustomerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, projectCustomer(c))
	}
	return views, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.CustomerView, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	view := projectCustomer(*customer)
	return &view, nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerRequest) (*domain.Customer, error) {
	if err := validateCustomer(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	return s.repo.CreateCustomer(ctx, domain.Customer{
		Name:     name,
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Initials: domain.Initials(name),
		Status:   domain.CustomerStatusActive,
	})
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, req domain.CustomerRequest) error {
	if err := validateCustomer(req); err != nil {
		return err
	}
	existing, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(req.Name)
	existing.Name = name
	existing.Email = strings.TrimSpace(req.Email)
	existing.Phone = strings.TrimSpace(req.Phone)
	existing.Initials = domain.Initials(name)
	return s.repo.UpdateCustomer(ctx, *existing)
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

// RecordCustomerPurchase bumps a customer's order counters after a sale
// is registered against them. The last-purchase label uses the purchase
// date, formatted the way the dashboard displays it.
func (s *Service) RecordCustomerPurchase(ctx context.Context, id int64, amount float64, when time.Time) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative purchase amount", store.ErrInvalidRecord)
	}
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	customer.Orders++
	customer.TotalSpent += amount
	customer.LastPurchase = when.Format(domain.LastPurchaseLayout)
	customer.Status = domain.CustomerStatusActive
	return s.repo.UpdateCustomer(ctx, *customer)
}

func (s *Service) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	return employees, nil
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

func (s *Service) CreateEmployee(ctx context.Context, req domain.EmployeeRequest) (*domain.Employee, error) {
	if err := validateEmployee(req); err != nil {
		return nil, err
	}
	return s.repo.CreateEmployee(ctx, domain.Employee{
		Name:        strings.TrimSpace(req.Name),
		Role:        strings.TrimSpace(req.Role),
		Performance: strings.TrimSpace(req.Performance),
	})
}

func (s *Service) UpdateEmployee(ctx context.Context, id int64, req domain.EmployeeRequest) error {
	if err := validateEmployee(req); err != nil {
		return err
	}
	return s.repo.UpdateEmployee(ctx, domain.Employee{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Role:        strings.TrimSpace(req.Role),
		Performance: strings.TrimSpace(req.Performance),
	})
}

func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	return s.repo.DeleteEmployee(ctx, id)
}

// ListInvoices answers the invoice dashboard: every invoice projected
// with its display label and effective status, plus the aggregated
// metrics strip. Invoices and customers load concurrently.
func (s *Service) ListInvoices(ctx context.Context) (*domain.InvoiceListResponse, error) {
	var (
		invoices  []domain.Invoice
		customers []domain.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		invoices, err = s.repo.ListInvoices(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.repo.ListCustomers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := s.now()
	views := analytics.ProjectInvoices(invoices, today)

	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	for i := range views {
		if views[i].CustomerID != nil {
			views[i].CustomerName = names[*views[i].CustomerID]
		}
	}

	return &domain.InvoiceListResponse{
		Invoices: views,
		Metrics:  analytics.AggregateInvoiceMetrics(invoices, today),
	}, nil
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (*domain.InvoiceView, error) {
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	view := analytics.ProjectInvoices([]domain.Invoice{*invoice}, s.now())[0]
	if invoice.CustomerID != nil {
		if customer, err := s.repo.GetCustomer(ctx, *invoice.CustomerID); err == nil {
			view.CustomerName = customer.Name
		}
	}
	return &view, nil
}

func (s *Service) CreateInvoice(ctx context.Context, req domain.InvoiceRequest) (*domain.Invoice, error) {
	if err := validateInvoice(req); err != nil {
		return nil, err
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.InvoiceStatusPending
	}
	return s.repo.CreateInvoice(ctx, domain.Invoice{
		CustomerID:  req.CustomerID,
		Total:       req.Total,
		Discount:    req.Discount,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		Status:      status,
	})
}

func (s *Service) UpdateInvoice(ctx context.Context, id int64, req domain.InvoiceRequest) error {
	if err := validateInvoice(req); err != nil {
		return err
	}
	return s.repo.UpdateInvoice(ctx, domain.Invoice{
		ID:          id,
		CustomerID:  req.CustomerID,
		Total:       req.Total,
		Discount:    req.Discount,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		Status:      strings.TrimSpace(req.Status),
	})
}

func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	return s.repo.DeleteInvoice(ctx, id)
}

// SalesAnalytics assembles the sales dashboard payload. Sales and product
// rows load concurrently and the assembled response is cached briefly;
// a cache failure is logged and treated as a miss.
func (s *Service) SalesAnalytics(ctx context.Context) (*domain.SalesAnalytics, error) {
	var cached domain.SalesAnalytics
	if hit := s.cacheLookup(ctx, cacheKeySalesAnalytics, &cached); hit {
		return &cached, nil
	}

	var (
		sales    []domain.Sale
		products []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = s.repo.ListSales(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.repo.ListProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := analytics.BuildSalesAnalytics(sales, products, s.now())
	s.cacheStore(ctx, cacheKeySalesAnalytics, result)
	return &result, nil
}

func (s *Service) InventoryAnalytics(ctx context.Context) (*domain.InventoryAnalytics, error) {
	var cached domain.InventoryAnalytics
	if hit := s.cacheLookup(ctx, cacheKeyInventoryAnalytics, &cached); hit {
		return &cached, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := analytics.BuildInventoryAnalytics(products)
	s.cacheStore(ctx, cacheKeyInventoryAnalytics, result)
	return &result, nil
}

func (s *Service) CustomerAnalytics(ctx context.Context) (*domain.CustomerAnalytics, error) {
	var cached domain.CustomerAnalytics
	if hit := s.cacheLookup(ctx, cacheKeyCustomerAnalytics, &cached); hit {
		return &cached, nil
	}

	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	result := analytics.BuildCustomerAnalytics(customers, s.now())
	s.cacheStore(ctx, cacheKeyCustomerAnalytics, result)
	return &result, nil
}

func (s *Service) cacheLookup(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *Service) cacheStore(ctx context.Context, key string, value any) {
	if s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func projectCustomer(c domain.Customer) domain.CustomerView {
	view := domain.CustomerView{
		ID:           c.ID,
		Initials:     c.Initials,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Orders:       c.Orders,
		TotalSpent:   c.TotalSpent,
		LastPurchase: c.LastPurchase,
		Status:       c.Status,
	}
	if view.Initials == "" {
		view.Initials = domain.Initials(c.Name)
	}
	if view.Phone == "" {
		view.Phone = "N/A"
	}
	if view.LastPurchase == "" {
		view.LastPurchase = "N/A"
	}
	if view.Status == "" {
		view.Status = domain.CustomerStatusActive
	}
	return view
}

func validateProduct(req domain.ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: product name is required", store.ErrInvalidRecord)
	}
	if req.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", store.ErrInvalidRecord)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", store.ErrInvalidRecord)
	}
	return nil
}

func validateCustomer(req domain.CustomerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: customer name is required", store.ErrInvalidRecord)
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", store.ErrInvalidRecord)
	}
	return nil
}

func validateEmployee(req domain.EmployeeRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: employee name is required", store.ErrInvalidRecord)
	}
	if strings.TrimSpace(req.Role) == "" {
		return fmt.Errorf("%w: employee role is required", store.ErrInvalidRecord)
	}
	return nil
}

func validateInvoice(req domain.InvoiceRequest) error {
	if strings.TrimSpace(req.InvoiceDate) == "" {
		return fmt.Errorf("%w: invoice date is required", store.ErrInvalidRecord)
	}
	if _, err := time.Parse(domain.DateLayout, req.InvoiceDate); err != nil {
		return fmt.Errorf("%w: invoice date must be YYYY-MM-DD", store.ErrInvalidRecord)
	}
	if req.DueDate != "" {
		if _, err := time.Parse(domain.DateLayout, req.DueDate); err != nil {
			return fmt.Errorf("%w: due date must be YYYY-MM-DD", store.ErrInvalidRecord)
		}
	}
	if req.Total < 0 {
		return fmt.Errorf("%w: total must not be negative", store.ErrInvalidRecord)
	}
	if req.Discount < 0 {
		return fmt.Errorf("%w: discount must not be negative", store.ErrInvalidRecord)
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		switch status {
		case domain.InvoiceStatusDraft, domain.InvoiceStatusPending, domain.InvoiceStatusPaid, domain.InvoiceStatusOverdue:
		default:
			return fmt.Errorf("%w: unknown invoice status %q", store.ErrInvalidRecord, status)
		}
	}
	return nil
}

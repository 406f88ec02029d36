// Package postgres is the PostgreSQL Repository used in production mode.
// Schema and seed data are applied on startup with embedded goose
// migrations, so a fresh database is ready to serve without manual setup.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"shopmonitor/backend/internal/domain"
	"shopmonitor/backend/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category, quantity, price, expiration_date FROM inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Price, &p.ExpirationDate); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, quantity, price, expiration_date FROM inventory WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Price, &p.ExpirationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO inventory (name, category, quantity, price, expiration_date)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		product.Name, product.Category, product.Quantity, product.Price, product.ExpirationDate).
		Scan(&product.ID)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE inventory SET name = $1, category = $2, quantity = $3, price = $4, expiration_date = $5
		 WHERE id = $6`,
		product.Name, product.Category, product.Quantity, product.Price, product.ExpirationDate, product.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, product_id, quantity, total, sale_date, status FROM sales ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.CustomerID, &sale.ProductID, &sale.Quantity, &sale.Total, &sale.SaleDate, &sale.Status); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, product_id, quantity, total, sale_date, status FROM sales WHERE id = $1`, id).
		Scan(&sale.ID, &sale.CustomerID, &sale.ProductID, &sale.Quantity, &sale.Total, &sale.SaleDate, &sale.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &sale, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, initials, orders, total_spent, last_purchase, status
		 FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Initials, &c.Orders, &c.TotalSpent, &c.LastPurchase, &c.Status); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, initials, orders, total_spent, last_purchase, status
		 FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Initials, &c.Orders, &c.TotalSpent, &c.LastPurchase, &c.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO customers (name, email, phone, initials, orders, total_spent, last_purchase, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		customer.Name, customer.Email, customer.Phone, customer.Initials,
		customer.Orders, customer.TotalSpent, customer.LastPurchase, customer.Status).
		Scan(&customer.ID)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &customer, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET name = $1, email = $2, phone = $3, initials = $4,
		 orders = $5, total_spent = $6, last_purchase = $7, status = $8
		 WHERE id = $9`,
		customer.Name, customer.Email, customer.Phone, customer.Initials,
		customer.Orders, customer.TotalSpent, customer.LastPurchase, customer.Status, customer.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, performance FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.Performance); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	var e domain.Employee
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, performance FROM employees WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.Role, &e.Performance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

func (s *Store) CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO employees (name, role, performance) VALUES ($1, $2, $3) RETURNING id`,
		employee.Name, employee.Role, employee.Performance).
		Scan(&employee.ID)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return &employee, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employee domain.Employee) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET name = $1, role = $2, performance = $3 WHERE id = $4`,
		employee.Name, employee.Role, employee.Performance, employee.ID)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, total, discount, invoice_date, due_date, status FROM invoices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, total, discount, invoice_date, due_date, status FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO invoices (customer_id, total, discount, invoice_date, due_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		invoice.CustomerID, invoice.Total, invoice.Discount, invoice.InvoiceDate,
		nullableText(invoice.DueDate), nullableText(invoice.Status)).
		Scan(&invoice.ID)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return &invoice, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET customer_id = $1, total = $2, discount = $3,
		 invoice_date = $4, due_date = $5, status = $6
		 WHERE id = $7`,
		invoice.CustomerID, invoice.Total, invoice.Discount, invoice.InvoiceDate,
		nullableText(invoice.DueDate), nullableText(invoice.Status), invoice.ID)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteInvoice(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password, role, active) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (username) DO NOTHING`,
		user.Username, user.Password, user.Role, user.Active)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, password, role, active, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserAccount
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = $1 WHERE username = $2`, password, username)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var (
		inv        domain.Invoice
		customerID sql.NullInt64
		dueDate    sql.NullString
		status     sql.NullString
	)
	if err := row.Scan(&inv.ID, &customerID, &inv.Total, &inv.Discount, &inv.InvoiceDate, &dueDate, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	if customerID.Valid {
		inv.CustomerID = &customerID.Int64
	}
	inv.DueDate = dueDate.String
	inv.Status = status.String
	return &inv, nil
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

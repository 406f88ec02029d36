package domain

import (
	"strings"
	"time"
)

// Dates are carried as plain "YYYY-MM-DD" strings end to end, matching the
// columns in the shop database and the payloads the dashboard exchanges.
const DateLayout = "2006-01-02"

// LastPurchaseLayout is the display label format for a customer's most
// recent purchase, e.g. "Jul 5, 2023".
const LastPurchaseLayout = "Jan 2, 2006"

type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category,omitempty"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	ExpirationDate string  `json:"expiration_date,omitempty"`
}

type ProductRequest struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	ExpirationDate string  `json:"expiration_date"`
}

type Sale struct {
	ID         int64   `json:"id"`
	CustomerID int64   `json:"customer_id"`
	ProductID  int64   `json:"product_id"`
	Quantity   int     `json:"quantity"`
	Total      float64 `json:"total"`
	SaleDate   string  `json:"sale_date"`
	Status     string  `json:"status"`
}

type Customer struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone,omitempty"`
	Initials     string  `json:"initials"`
	Orders       int     `json:"orders"`
	TotalSpent   float64 `json:"total_spent"`
	LastPurchase string  `json:"last_purchase,omitempty"`
	Status       string  `json:"status"`
}

// CustomerView is the projection the dashboard customer table consumes.
// Optional columns are resolved to display fallbacks and Initials is
// re-derived from Name so the label can never drift out of sync.
type CustomerView struct {
	ID           int64   `json:"id"`
	Initials     string  `json:"initials"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Orders       int     `json:"orders"`
	TotalSpent   float64 `json:"totalSpent"`
	LastPurchase string  `json:"lastPurchase"`
	Status       string  `json:"status"`
}

type CustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Employee struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Performance string `json:"performance,omitempty"`
}

type EmployeeRequest struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Performance string `json:"performance"`
}

type Invoice struct {
	ID          int64   `json:"id"`
	CustomerID  *int64  `json:"customer_id"`
	Total       float64 `json:"total"`
	Discount    float64 `json:"discount"`
	InvoiceDate string  `json:"invoice_date"`
	DueDate     string  `json:"due_date,omitempty"`
	Status      string  `json:"status,omitempty"`
}

type InvoiceRequest struct {
	CustomerID  *int64  `json:"customer_id"`
	Total       float64 `json:"total"`
	Discount    float64 `json:"discount"`
	InvoiceDate string  `json:"invoice_date"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
}

// InvoiceView is an invoice annotated for display: a zero-padded sequence
// label and, when no status is stored, the status derived from its dates.
// The annotation is a projection only and is never written back.
type InvoiceView struct {
	ID            int64   `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	CustomerID    *int64  `json:"customer_id"`
	CustomerName  string  `json:"customer_name,omitempty"`
	Total         float64 `json:"total"`
	Discount      float64 `json:"discount"`
	InvoiceDate   string  `json:"invoice_date"`
	DueDate       string  `json:"due_date,omitempty"`
	Status        string  `json:"status"`
}

type InvoiceMetrics struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	PendingAmount float64 `json:"pendingAmount"`
	OverdueAmount float64 `json:"overdueAmount"`
	TotalInvoices int     `json:"totalInvoices"`
}

type InvoiceListResponse struct {
	Invoices []InvoiceView  `json:"invoices"`
	Metrics  InvoiceMetrics `json:"metrics"`
}

type MonthlySalesPoint struct {
	Month      string  `json:"month"`
	TotalSales float64 `json:"total_sales"`
}

type TopProduct struct {
	ProductName string  `json:"product_name"`
	TotalSales  float64 `json:"total_sales"`
}

type SalesMetrics struct {
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	ConversionRate    float64 `json:"conversion_rate"`
}

type MonthlyGrowthPoint struct {
	Month      string  `json:"month"`
	GrowthRate float64 `json:"growth_rate"`
}

type SalesAnalytics struct {
	MonthlySales  []MonthlySalesPoint  `json:"monthlySales"`
	TopProducts   []TopProduct         `json:"topProducts"`
	SalesMetrics  []SalesMetrics       `json:"salesMetrics"`
	MonthlyGrowth []MonthlyGrowthPoint `json:"monthlyGrowth"`
}

type InventorySummary struct {
	TotalProducts  int     `json:"total_products"`
	LowStockItems  int     `json:"low_stock_items"`
	InventoryValue float64 `json:"inventory_value"`
}

type CategoryCount struct {
	Category     string  `json:"category"`
	ProductCount int     `json:"product_count"`
	Percentage   float64 `json:"percentage"`
}

type StockAvailability struct {
	TotalProducts        int     `json:"total_products"`
	InStockProducts      int     `json:"in_stock_products"`
	OutOfStockProducts   int     `json:"out_of_stock_products"`
	InStockPercentage    float64 `json:"in_stock_percentage"`
	OutOfStockPercentage float64 `json:"out_of_stock_percentage"`
}

type InventoryAnalytics struct {
	Summary         []InventorySummary  `json:"summary"`
	Categories      []CategoryCount     `json:"categories"`
	StockLevels     []Product           `json:"stockLevels"`
	InventoryGrowth []StockAvailability `json:"inventoryGrowth"`
}

type CustomerSummary struct {
	TotalCustomers     int     `json:"total_customers"`
	ActiveCustomers    int     `json:"active_customers"`
	AvgLifetimeValue   float64 `json:"avg_lifetime_value"`
	RepeatPurchaseRate float64 `json:"repeat_purchase_rate"`
}

type TopCustomer struct {
	Name       string  `json:"name"`
	TotalSpent float64 `json:"total_spent"`
}

type CustomerMetrics struct {
	TotalSpent  float64 `json:"total_spent"`
	AvgSpent    float64 `json:"avg_spent"`
	TotalOrders int     `json:"total_orders"`
}

type AgeBucket struct {
	AgeGroup   string  `json:"age_group"`
	Percentage float64 `json:"percentage"`
}

type CustomerGrowthPoint struct {
	Month         string `json:"month"`
	CustomerCount int    `json:"customer_count"`
}

type CustomerAnalytics struct {
	Summary         []CustomerSummary     `json:"summary"`
	TopCustomers    []TopCustomer         `json:"topCustomers"`
	CustomerMetrics []CustomerMetrics     `json:"customerMetrics"`
	AgeDistribution []AgeBucket           `json:"ageDistribution"`
	CustomerGrowth  []CustomerGrowthPoint `json:"customerGrowth"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	InvoiceStatusDraft   = "Draft"
	InvoiceStatusPending = "Pending"
	InvoiceStatusPaid    = "Paid"
	InvoiceStatusOverdue = "Overdue"
)

const (
	SaleStatusCompleted = "Completed"
	SaleStatusPending   = "Pending"
	SaleStatusRefunded  = "Refunded"
	SaleStatusCanceled  = "Canceled"
)

const (
	CustomerStatusActive   = "Active"
	CustomerStatusInactive = "Inactive"
)

// Initials derives the customer display label from a name: the first letter
// of each space-separated token, uppercased. "Jane van Dyke" -> "JVD".
func Initials(name string) string {
	var b strings.Builder
	for _, token := range strings.Fields(name) {
		r := []rune(token)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// Package analytics holds the derivation and aggregation core of the
// dashboard: invoice status derivation, the invoice metrics fold, and the
// sales/inventory/customer analytics pipelines. Every function here is a
// pure read over the slices it is given; nothing is ever written back to
// the store.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"shopmonitor/backend/internal/domain"
)

// monthlyWindowSize is the trailing number of calendar months covered by
// the monthly sales series, current month included.
const monthlyWindowSize = 7

const (
	topProductsLimit  = 6
	topCustomersLimit = 7
	lowStockThreshold = 5
	stockLevelCutoff  = 12
	stockLevelsLimit  = 10
)

// DeriveInvoiceStatus returns the effective status of an invoice. An
// explicit non-empty status always wins. Otherwise the due date (falling
// back to the invoice date) is compared against today: strictly in the
// past means Overdue, anything else Pending.
func DeriveInvoiceStatus(inv domain.Invoice, today time.Time) string {
	if inv.Status != "" {
		return inv.Status
	}

	effective := inv.DueDate
	if effective == "" {
		effective = inv.InvoiceDate
	}

	due, err := time.Parse(domain.DateLayout, effective)
	if err != nil {
		// Malformed dates are rejected upstream; an unparseable survivor
		// is treated as not yet due.
		return domain.InvoiceStatusPending
	}

	if due.Before(truncateToDate(today)) {
		return domain.InvoiceStatusOverdue
	}
	return domain.InvoiceStatusPending
}

// AggregateInvoiceMetrics folds the invoice collection into summary totals
// in one pass. Every non-Draft invoice lands in exactly one bucket, so
// TotalRevenue + PendingAmount + OverdueAmount equals the sum of all
// non-Draft totals.
func AggregateInvoiceMetrics(invoices []domain.Invoice, today time.Time) domain.InvoiceMetrics {
	metrics := domain.InvoiceMetrics{TotalInvoices: len(invoices)}

	for _, inv := range invoices {
		switch DeriveInvoiceStatus(inv, today) {
		case domain.InvoiceStatusPaid:
			metrics.TotalRevenue += inv.Total
		case domain.InvoiceStatusPending:
			metrics.PendingAmount += inv.Total
		case domain.InvoiceStatusOverdue:
			metrics.OverdueAmount += inv.Total
		}
	}

	return metrics
}

// ProjectInvoices annotates invoices for display: a zero-padded sequence
// label per position and the derived status wherever none is stored. The
// projection never mutates the input.
func ProjectInvoices(invoices []domain.Invoice, today time.Time) []domain.InvoiceView {
	views := make([]domain.InvoiceView, 0, len(invoices))
	for i, inv := range invoices {
		views = append(views, domain.InvoiceView{
			ID:            inv.ID,
			InvoiceNumber: fmt.Sprintf("INV-%03d", i+1),
			CustomerID:    inv.CustomerID,
			Total:         inv.Total,
			Discount:      inv.Discount,
			InvoiceDate:   inv.InvoiceDate,
			DueDate:       inv.DueDate,
			Status:        DeriveInvoiceStatus(inv, today),
		})
	}
	return views
}

// BuildSalesAnalytics computes the sales analytics pipeline: the trailing
// monthly series, the product ranking, overall order metrics, and the
// month-over-month growth series.
func BuildSalesAnalytics(sales []domain.Sale, products []domain.Product, today time.Time) domain.SalesAnalytics {
	return domain.SalesAnalytics{
		MonthlySales:  monthlySales(sales, today),
		TopProducts:   topProducts(sales, products),
		SalesMetrics:  []domain.SalesMetrics{salesMetrics(sales)},
		MonthlyGrowth: monthlyGrowth(monthlySales(sales, today)),
	}
}

// monthlySales groups sales by calendar month over the trailing window and
// sums totals per month. Months with no sales are omitted, not zero-filled;
// a consumer that needs a dense series backfills the gaps itself.
func monthlySales(sales []domain.Sale, today time.Time) []domain.MonthlySalesPoint {
	anchor := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	window := make([]string, 0, monthlyWindowSize)
	for i := monthlyWindowSize - 1; i >= 0; i-- {
		window = append(window, anchor.AddDate(0, -i, 0).Format("2006-01"))
	}

	totals := make(map[string]float64, monthlyWindowSize)
	for _, sale := range sales {
		date, err := time.Parse(domain.DateLayout, sale.SaleDate)
		if err != nil {
			continue
		}
		totals[date.Format("2006-01")] += sale.Total
	}

	points := make([]domain.MonthlySalesPoint, 0, monthlyWindowSize)
	for _, month := range window {
		total, ok := totals[month]
		if !ok {
			continue
		}
		points = append(points, domain.MonthlySalesPoint{Month: month, TotalSales: total})
	}
	return points
}

// topProducts ranks products by summed sale total descending and returns
// at most the top six. Ties keep the order products were first sold in.
// A sale referencing a product that no longer exists is grouped under the
// "Unknown" label rather than dropped.
func topProducts(sales []domain.Sale, products []domain.Product) []domain.TopProduct {
	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	totals := make(map[int64]float64, len(products))
	order := make([]int64, 0, len(products))
	for _, sale := range sales {
		if _, seen := totals[sale.ProductID]; !seen {
			order = append(order, sale.ProductID)
		}
		totals[sale.ProductID] += sale.Total
	}

	ranked := make([]domain.TopProduct, 0, len(order))
	for _, id := range order {
		name, ok := names[id]
		if !ok {
			name = "Unknown"
		}
		ranked = append(ranked, domain.TopProduct{ProductName: name, TotalSales: totals[id]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSales > ranked[j].TotalSales
	})

	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}
	return ranked
}

func salesMetrics(sales []domain.Sale) domain.SalesMetrics {
	if len(sales) == 0 {
		return domain.SalesMetrics{}
	}

	var revenue float64
	var completed int
	for _, sale := range sales {
		revenue += sale.Total
		if sale.Status == domain.SaleStatusCompleted {
			completed++
		}
	}

	return domain.SalesMetrics{
		TotalRevenue:      revenue,
		AverageOrderValue: revenue / float64(len(sales)),
		ConversionRate:    100 * float64(completed) / float64(len(sales)),
	}
}

// monthlyGrowth computes the month-over-month growth rate between adjacent
// points of the monthly series. A zero previous total is substituted with a
// divisor of 1, so a month with no baseline reports current*100.
func monthlyGrowth(series []domain.MonthlySalesPoint) []domain.MonthlyGrowthPoint {
	growth := make([]domain.MonthlyGrowthPoint, 0, len(series))
	previous := 0.0
	for _, point := range series {
		divisor := previous
		if divisor == 0 {
			divisor = 1
		}
		growth = append(growth, domain.MonthlyGrowthPoint{
			Month:      point.Month,
			GrowthRate: (point.TotalSales - previous) / divisor * 100,
		})
		previous = point.TotalSales
	}
	return growth
}

// BuildInventoryAnalytics computes the inventory analytics pipeline:
// summary counts, the category distribution, the low-stock listing and
// stock availability percentages.
func BuildInventoryAnalytics(products []domain.Product) domain.InventoryAnalytics {
	return domain.InventoryAnalytics{
		Summary:         []domain.InventorySummary{inventorySummary(products)},
		Categories:      categoryDistribution(products),
		StockLevels:     lowStockListing(products),
		InventoryGrowth: []domain.StockAvailability{stockAvailability(products)},
	}
}

func inventorySummary(products []domain.Product) domain.InventorySummary {
	summary := domain.InventorySummary{TotalProducts: len(products)}
	for _, p := range products {
		if p.Quantity <= lowStockThreshold {
			summary.LowStockItems++
		}
		summary.InventoryValue += p.Price * float64(p.Quantity)
	}
	return summary
}

// categoryDistribution groups products by category and reports each
// group's share of the total product count, rounded to one decimal.
// Products without a category fall under "Uncategorized".
func categoryDistribution(products []domain.Product) []domain.CategoryCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, p := range products {
		category := p.Category
		if category == "" {
			category = "Uncategorized"
		}
		if _, seen := counts[category]; !seen {
			order = append(order, category)
		}
		counts[category]++
	}

	distribution := make([]domain.CategoryCount, 0, len(order))
	for _, category := range order {
		distribution = append(distribution, domain.CategoryCount{
			Category:     category,
			ProductCount: counts[category],
			Percentage:   round1(100 * float64(counts[category]) / float64(len(products))),
		})
	}

	sort.SliceStable(distribution, func(i, j int) bool {
		if distribution[i].ProductCount != distribution[j].ProductCount {
			return distribution[i].ProductCount > distribution[j].ProductCount
		}
		return distribution[i].Category < distribution[j].Category
	})
	return distribution
}

// lowStockListing returns products at or below the reorder cutoff,
// ascending by quantity, capped at ten rows.
func lowStockListing(products []domain.Product) []domain.Product {
	low := make([]domain.Product, 0, stockLevelsLimit)
	for _, p := range products {
		if p.Quantity <= stockLevelCutoff {
			low = append(low, p)
		}
	}

	sort.SliceStable(low, func(i, j int) bool {
		return low[i].Quantity < low[j].Quantity
	})

	if len(low) > stockLevelsLimit {
		low = low[:stockLevelsLimit]
	}
	return low
}

func stockAvailability(products []domain.Product) domain.StockAvailability {
	availability := domain.StockAvailability{TotalProducts: len(products)}
	for _, p := range products {
		if p.Quantity > 0 {
			availability.InStockProducts++
		} else {
			availability.OutOfStockProducts++
		}
	}
	if availability.TotalProducts > 0 {
		total := float64(availability.TotalProducts)
		availability.InStockPercentage = round1(100 * float64(availability.InStockProducts) / total)
		availability.OutOfStockPercentage = round1(100 * float64(availability.OutOfStockProducts) / total)
	}
	return availability
}

// BuildCustomerAnalytics computes the customer analytics pipeline. The age
// distribution and growth series are synthesized placeholders: no
// birthdate or join-date attribute exists to back them, so callers must
// not treat those two series as measured data.
func BuildCustomerAnalytics(customers []domain.Customer, today time.Time) domain.CustomerAnalytics {
	return domain.CustomerAnalytics{
		Summary:         []domain.CustomerSummary{customerSummary(customers)},
		TopCustomers:    topCustomers(customers),
		CustomerMetrics: []domain.CustomerMetrics{customerMetrics(customers)},
		AgeDistribution: placeholderAgeDistribution(),
		CustomerGrowth:  placeholderCustomerGrowth(len(customers), today),
	}
}

func customerSummary(customers []domain.Customer) domain.CustomerSummary {
	summary := domain.CustomerSummary{TotalCustomers: len(customers)}
	if len(customers) == 0 {
		return summary
	}

	var spent float64
	var repeat int
	for _, c := range customers {
		if c.Status == domain.CustomerStatusActive {
			summary.ActiveCustomers++
		}
		if c.Orders > 1 {
			repeat++
		}
		spent += c.TotalSpent
	}

	summary.AvgLifetimeValue = spent / float64(len(customers))
	summary.RepeatPurchaseRate = 100 * float64(repeat) / float64(len(customers))
	return summary
}

// topCustomers ranks customers by lifetime spend descending, capped at
// seven. Ties keep insertion order.
func topCustomers(customers []domain.Customer) []domain.TopCustomer {
	ranked := make([]domain.TopCustomer, 0, len(customers))
	for _, c := range customers {
		ranked = append(ranked, domain.TopCustomer{Name: c.Name, TotalSpent: c.TotalSpent})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSpent > ranked[j].TotalSpent
	})

	if len(ranked) > topCustomersLimit {
		ranked = ranked[:topCustomersLimit]
	}
	return ranked
}

func customerMetrics(customers []domain.Customer) domain.CustomerMetrics {
	metrics := domain.CustomerMetrics{}
	for _, c := range customers {
		metrics.TotalSpent += c.TotalSpent
		metrics.TotalOrders += c.Orders
	}
	if len(customers) > 0 {
		metrics.AvgSpent = metrics.TotalSpent / float64(len(customers))
	}
	return metrics
}

// placeholderAgeDistribution is illustrative only: the store holds no
// customer birthdate, so the buckets are a fixed demo split.
func placeholderAgeDistribution() []domain.AgeBucket {
	return []domain.AgeBucket{
		{AgeGroup: "18-24", Percentage: 15},
		{AgeGroup: "25-34", Percentage: 30},
		{AgeGroup: "35-44", Percentage: 25},
		{AgeGroup: "45-54", Percentage: 20},
		{AgeGroup: "55+", Percentage: 10},
	}
}

// placeholderCustomerGrowth is illustrative only: with no join date stored
// it ramps linearly from zero to the current customer count over the
// trailing months. Deterministic for a given count and reference day.
func placeholderCustomerGrowth(total int, today time.Time) []domain.CustomerGrowthPoint {
	anchor := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	points := make([]domain.CustomerGrowthPoint, 0, monthlyWindowSize)
	for i := monthlyWindowSize - 1; i >= 0; i-- {
		month := anchor.AddDate(0, -i, 0)
		step := monthlyWindowSize - i
		points = append(points, domain.CustomerGrowthPoint{
			Month:         month.Format("Jan"),
			CustomerCount: total * step / monthlyWindowSize,
		})
	}
	return points
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

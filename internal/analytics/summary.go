package analytics

import (
	"grocery-analytics/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockThreshold - верхняя граница остатка, при которой товар считается заканчивающимся.
const LowStockThreshold = 10

// SummarizeRevenue суммирует total_amount действительных заказов по интервалам.
func SummarizeRevenue(orders []models.Order, w Windows) models.RevenueSummary {
	summary := models.RevenueSummary{
		Total:         decimal.Zero,
		Today:         decimal.Zero,
		Week:          decimal.Zero,
		Month:         decimal.Zero,
		PreviousMonth: decimal.Zero,
	}

	for i := range orders {
		order := &orders[i]
		if !order.IsValid() {
			continue
		}

		amount := order.TotalAmount
		summary.Total = summary.Total.Add(amount)
		if w.Today.Contains(order.CreatedAt) {
			summary.Today = summary.Today.Add(amount)
		}
		if w.ThisWeek.Contains(order.CreatedAt) {
			summary.Week = summary.Week.Add(amount)
		}
		if w.ThisMonth.Contains(order.CreatedAt) {
			summary.Month = summary.Month.Add(amount)
		}
		if w.PreviousMonth.Contains(order.CreatedAt) {
			summary.PreviousMonth = summary.PreviousMonth.Add(amount)
		}
	}

	summary.Growth = GrowthRate(summary.Month, summary.PreviousMonth)
	return summary
}

// SummarizeOrders считает заказы. Total включает отмененные,
// счетчики по интервалам учитывают только действительные заказы.
func SummarizeOrders(orders []models.Order, w Windows) models.OrderSummary {
	summary := models.OrderSummary{Total: len(orders)}

	revenue := decimal.Zero
	valid := 0
	for i := range orders {
		order := &orders[i]

		switch {
		case order.Status == models.OrderStatusCancelled:
			summary.Cancelled++
		case order.Status == models.OrderStatusDelivered:
			summary.Completed++
		case order.Status.IsPending():
			summary.Pending++
		}

		if !order.IsValid() {
			continue
		}

		valid++
		revenue = revenue.Add(order.TotalAmount)
		if w.Today.Contains(order.CreatedAt) {
			summary.Today++
		}
		if w.ThisWeek.Contains(order.CreatedAt) {
			summary.Week++
		}
		if w.ThisMonth.Contains(order.CreatedAt) {
			summary.Month++
		}
	}

	summary.AverageValue = AverageValue(revenue, valid)
	return summary
}

// SummarizeCustomers считает покупателей.
func SummarizeCustomers(users []models.User, orders []models.Order, w Windows) models.CustomerSummary {
	summary := models.CustomerSummary{Total: len(users)}

	for i := range users {
		if w.ThisMonth.Contains(users[i].CreatedAt) {
			summary.New++
		}
	}
	summary.Returning = summary.Total - summary.New

	active := make(map[uuid.UUID]struct{})
	for i := range orders {
		order := &orders[i]
		if !order.IsValid() || order.UserID == nil {
			continue
		}
		if w.ThisMonth.Contains(order.CreatedAt) {
			active[*order.UserID] = struct{}{}
		}
	}
	summary.ActiveThisMonth = len(active)

	return summary
}

// SummarizeProducts описывает состояние каталога.
func SummarizeProducts(products []models.Product) models.ProductSummary {
	summary := models.ProductSummary{Total: len(products)}

	for i := range products {
		product := &products[i]
		switch {
		case product.Stock == 0:
			summary.OutOfStock++
		case product.Stock > 0 && product.Stock <= LowStockThreshold:
			summary.LowStock++
		}
		if product.IsFeatured {
			summary.Featured++
		}
		if product.IsOnSale {
			summary.OnSale++
		}
	}

	return summary
}

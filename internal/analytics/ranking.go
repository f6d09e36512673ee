package analytics

import (
	"sort"

	"grocery-analytics/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopLimit - максимальная длина рейтингов.
const TopLimit = 10

const (
	unknownCategory      = "Unknown"
	unknownPaymentMethod = "unknown"
)

var paymentLabels = map[string]string{
	models.PaymentMethodCash: "Cash",
	models.PaymentMethodCard: "Card",
}

// topN сортирует по убыванию метрики устойчиво: при равенстве сохраняется
// порядок первого появления ключа. Результат обрезается до limit.
func topN[T any](items []T, metric func(T) int, limit int) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return metric(items[i]) > metric(items[j])
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// orderStatuses индексирует статусы заказов для фильтрации позиций.
func orderStatuses(orders []models.Order) map[uuid.UUID]models.OrderStatus {
	statuses := make(map[uuid.UUID]models.OrderStatus, len(orders))
	for i := range orders {
		statuses[orders[i].ID] = orders[i].Status
	}
	return statuses
}

func itemCancelled(statuses map[uuid.UUID]models.OrderStatus, item *models.OrderItem) bool {
	status, ok := statuses[item.OrderID]
	return ok && status == models.OrderStatusCancelled
}

// CategoryBreakdown группирует позиции по категории товара.
// Пропускаются позиции без товара, без категории и позиции отмененных заказов.
func CategoryBreakdown(items []models.OrderItem, orders []models.Order, categories []models.Category) []models.CategoryMetric {
	names := make(map[uuid.UUID]string, len(categories))
	for i := range categories {
		names[categories[i].ID] = categories[i].Name
	}
	statuses := orderStatuses(orders)

	result := make([]models.CategoryMetric, 0)
	index := make(map[uuid.UUID]int)
	for i := range items {
		item := &items[i]
		if item.Product == nil || item.Product.CategoryID == nil || itemCancelled(statuses, item) {
			continue
		}

		categoryID := *item.Product.CategoryID
		pos, ok := index[categoryID]
		if !ok {
			name, known := names[categoryID]
			if !known {
				name = unknownCategory
			}
			pos = len(result)
			index[categoryID] = pos
			result = append(result, models.CategoryMetric{CategoryID: categoryID, Name: name, Revenue: decimal.Zero})
		}

		result[pos].OrderCount += item.Quantity
		result[pos].Revenue = result[pos].Revenue.Add(item.Subtotal())
	}

	return topN(result, func(m models.CategoryMetric) int { return m.OrderCount }, TopLimit)
}

// ProductBreakdown ранжирует товары по числу проданных единиц.
// Пропускаются позиции без товара и позиции отмененных заказов.
func ProductBreakdown(items []models.OrderItem, orders []models.Order) []models.ProductMetric {
	statuses := orderStatuses(orders)

	result := make([]models.ProductMetric, 0)
	index := make(map[uuid.UUID]int)
	for i := range items {
		item := &items[i]
		if item.Product == nil || itemCancelled(statuses, item) {
			continue
		}

		productID := item.Product.ID
		pos, ok := index[productID]
		if !ok {
			pos = len(result)
			index[productID] = pos
			result = append(result, models.ProductMetric{
				ProductID: productID,
				Name:      item.Product.Name,
				Thumbnail: item.Product.Thumbnail(),
				Revenue:   decimal.Zero,
			})
		}

		result[pos].OrderCount += item.Quantity
		result[pos].Revenue = result[pos].Revenue.Add(item.Subtotal())
	}

	return topN(result, func(m models.ProductMetric) int { return m.OrderCount }, TopLimit)
}

// PaymentBreakdown группирует действительные заказы по способу оплаты.
// Неизвестные способы сохраняются как есть, пустой попадает в "unknown".
func PaymentBreakdown(orders []models.Order) []models.PaymentMetric {
	result := make([]models.PaymentMetric, 0)
	index := make(map[string]int)
	for i := range orders {
		order := &orders[i]
		if !order.IsValid() {
			continue
		}

		method := order.PaymentMethod
		if method == "" {
			method = unknownPaymentMethod
		}

		pos, ok := index[method]
		if !ok {
			label, known := paymentLabels[method]
			if !known {
				label = method
			}
			pos = len(result)
			index[method] = pos
			result = append(result, models.PaymentMetric{Method: method, Label: label, Revenue: decimal.Zero})
		}

		result[pos].Count++
		result[pos].Revenue = result[pos].Revenue.Add(order.TotalAmount)
	}

	return topN(result, func(m models.PaymentMetric) int { return m.Count }, TopLimit)
}

// FavoriteRanking считает популярность товаров в избранном по всем пользователям.
// Имя и миниатюра берутся из первой встреченной записи.
func FavoriteRanking(favorites []models.Favorite) []models.FavoriteMetric {
	result := make([]models.FavoriteMetric, 0)
	index := make(map[uuid.UUID]int)
	for i := range favorites {
		favorite := &favorites[i]
		if favorite.Product == nil {
			continue
		}

		productID := favorite.Product.ID
		pos, ok := index[productID]
		if !ok {
			pos = len(result)
			index[productID] = pos
			result = append(result, models.FavoriteMetric{
				ProductID: productID,
				Name:      favorite.Product.Name,
				Thumbnail: favorite.Product.Thumbnail(),
			})
		}
		result[pos].Count++
	}

	return topN(result, func(m models.FavoriteMetric) int { return m.Count }, TopLimit)
}

// StatusBreakdown считает все заказы по статусам, включая отмененные.
func StatusBreakdown(orders []models.Order) map[models.OrderStatus]int {
	result := make(map[models.OrderStatus]int)
	for i := range orders {
		result[orders[i].Status]++
	}
	return result
}

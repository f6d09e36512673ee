package analytics

import (
	"time"

	"grocery-analytics/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// четверг, 14 марта 2024
var testNow = time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func newOrder(status models.OrderStatus, amount string, createdAt time.Time) models.Order {
	return models.Order{
		ID:            uuid.New(),
		TotalAmount:   dec(amount),
		Status:        status,
		PaymentMethod: models.PaymentMethodCard,
		CreatedAt:     createdAt,
	}
}

func newRef(name string, categoryID *uuid.UUID) *models.ProductRef {
	return &models.ProductRef{
		ID:         uuid.New(),
		Name:       name,
		Images:     []string{"https://cdn.example.com/" + name + ".png"},
		CategoryID: categoryID,
	}
}

func newItem(orderID uuid.UUID, ref *models.ProductRef, quantity int, price string) models.OrderItem {
	item := models.OrderItem{
		OrderID:  orderID,
		Quantity: quantity,
		Price:    dec(price),
		Product:  ref,
	}
	if ref != nil {
		item.ProductID = idPtr(ref.ID)
	}
	return item
}

func favoritesFor(ref *models.ProductRef, count int) []models.Favorite {
	result := make([]models.Favorite, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, models.Favorite{
			ID:        uuid.New(),
			ProductID: idPtr(ref.ID),
			UserID:    uuid.New(),
			Product:   ref,
		})
	}
	return result
}

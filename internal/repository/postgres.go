// Package repository читает сырые коллекции магазина для расчета дашборда.
// Присоединенные товары декодируются в *models.ProductRef: nil означает,
// что товар удален или связь пустая.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"grocery-analytics/internal/database"
	"grocery-analytics/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres читает коллекции из PostgreSQL
type Postgres struct {
	db *database.DB
}

// NewPostgres создает репозиторий поверх пула соединений
func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

const (
	listOrdersQuery = `
		SELECT id, user_id, total_amount, status, payment_method, created_at
		FROM orders
		ORDER BY created_at ASC, id ASC`

	listOrderItemsQuery = `
		SELECT oi.order_id, oi.product_id, oi.quantity, oi.price,
		       p.id, p.name, p.images, p.category_id
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		ORDER BY oi.order_id ASC, oi.id ASC`

	listProductsQuery = `
		SELECT id, name, category_id, stock, is_featured, is_on_sale, images
		FROM products
		ORDER BY created_at ASC, id ASC`

	listCategoriesQuery = `
		SELECT id, name
		FROM categories
		ORDER BY name ASC`

	listUsersQuery = `
		SELECT id, created_at
		FROM users
		ORDER BY created_at ASC`

	listFavoritesQuery = `
		SELECT f.id, f.product_id, f.user_id,
		       p.id, p.name, p.images, p.category_id
		FROM favorites f
		LEFT JOIN products p ON p.id = f.product_id
		ORDER BY f.created_at ASC, f.id ASC`
)

// ListOrders возвращает все заказы
func (r *Postgres) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	defer rows.Close()

	var result []models.Order
	for rows.Next() {
		var (
			order   models.Order
			userID  uuid.NullUUID
			status  string
			payment sql.NullString
		)
		if err := rows.Scan(&order.ID, &userID, &order.TotalAmount, &status, &payment, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.UserID = nullableID(userID)
		order.Status = models.OrderStatus(status)
		order.PaymentMethod = payment.String
		result = append(result, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return result, nil
}

// ListOrderItems возвращает позиции заказов вместе с присоединенным товаром
func (r *Postgres) ListOrderItems(ctx context.Context) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, listOrderItemsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	var result []models.OrderItem
	for rows.Next() {
		var (
			item      models.OrderItem
			productID uuid.NullUUID
			joined    joinedProduct
		)
		if err := rows.Scan(&item.OrderID, &productID, &item.Quantity, &item.Price,
			&joined.id, &joined.name, &joined.images, &joined.categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.ProductID = nullableID(productID)
		item.Product = joined.ref()
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return result, nil
}

// ListProducts возвращает каталог
func (r *Postgres) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer rows.Close()

	var result []models.Product
	for rows.Next() {
		var (
			product    models.Product
			categoryID uuid.NullUUID
			images     pq.StringArray
		)
		if err := rows.Scan(&product.ID, &product.Name, &categoryID, &product.Stock,
			&product.IsFeatured, &product.IsOnSale, &images); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product.CategoryID = nullableID(categoryID)
		product.Images = []string(images)
		result = append(result, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return result, nil
}

// ListCategories возвращает категории
func (r *Postgres) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	defer rows.Close()

	var result []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return result, nil
}

// ListUsers возвращает покупателей
func (r *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return result, nil
}

// ListFavorites возвращает избранное вместе с присоединенным товаром
func (r *Postgres) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, listFavoritesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	defer rows.Close()

	var result []models.Favorite
	for rows.Next() {
		var (
			favorite  models.Favorite
			productID uuid.NullUUID
			joined    joinedProduct
		)
		if err := rows.Scan(&favorite.ID, &productID, &favorite.UserID,
			&joined.id, &joined.name, &joined.images, &joined.categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorite.ProductID = nullableID(productID)
		favorite.Product = joined.ref()
		result = append(result, favorite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return result, nil
}

// joinedProduct - колонки товара из LEFT JOIN, все могут быть NULL.
type joinedProduct struct {
	id         uuid.NullUUID
	name       sql.NullString
	images     pq.StringArray
	categoryID uuid.NullUUID
}

func (j joinedProduct) ref() *models.ProductRef {
	if !j.id.Valid {
		return nil
	}
	return &models.ProductRef{
		ID:         j.id.UUID,
		Name:       j.name.String,
		Images:     []string(j.images),
		CategoryID: nullableID(j.categoryID),
	}
}

func nullableID(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	value := id.UUID
	return &value
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"grocery-analytics/internal/models"
	"grocery-analytics/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// File читает коллекции из JSON-выгрузки облачного хранилища.
// Каждый цикл пересчета читает файл заново, чтобы видеть свежие данные.
type File struct {
	path string
}

// fileCycle - выгрузка, прочитанная один раз на цикл: все коллекции из одной версии файла.
type fileCycle struct {
	path string
	dump dump
}

// NewFile создает репозиторий поверх файла выгрузки
func NewFile(path string) *File {
	return &File{path: path}
}

// dump - формат выгрузки: коллекции верхнего уровня, связи встроены под ключом "products".
type dump struct {
	Orders     json.RawMessage `json:"orders"`
	OrderItems json.RawMessage `json:"order_items"`
	Products   json.RawMessage `json:"products"`
	Categories json.RawMessage `json:"categories"`
	Users      json.RawMessage `json:"users"`
	Favorites  json.RawMessage `json:"favorites"`
}

type itemRecord struct {
	OrderID   uuid.UUID              `json:"order_id"`
	ProductID *uuid.UUID             `json:"product_id"`
	Quantity  int                    `json:"quantity"`
	Price     decimal.Decimal        `json:"price"`
	Product   models.ProductRelation `json:"products"`
}

type favoriteRecord struct {
	ID        uuid.UUID              `json:"id"`
	ProductID *uuid.UUID             `json:"product_id"`
	UserID    uuid.UUID              `json:"user_id"`
	Product   models.ProductRelation `json:"products"`
}

// BeginCycle читает и декодирует выгрузку один раз для всего цикла пересчета.
func (f *File) BeginCycle(ctx context.Context) (services.Repository, error) {
	return f.load(ctx)
}

func (f *File) load(ctx context.Context) (*fileCycle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump %s: %w", f.path, err)
	}

	cycle := &fileCycle{path: f.path}
	if err := json.Unmarshal(data, &cycle.dump); err != nil {
		return nil, fmt.Errorf("failed to decode dump %s: %w", f.path, err)
	}
	return cycle, nil
}

// ListOrders возвращает заказы из выгрузки
func (f *File) ListOrders(ctx context.Context) ([]models.Order, error) {
	cycle, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return cycle.ListOrders(ctx)
}

// ListOrderItems возвращает позиции с нормализованной связью на товар
func (f *File) ListOrderItems(ctx context.Context) ([]models.OrderItem, error) {
	cycle, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return cycle.ListOrderItems(ctx)
}

// ListProducts возвращает каталог из выгрузки
func (f *File) ListProducts(ctx context.Context) ([]models.Product, error) {
	cycle, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return cycle.ListProducts(ctx)
}

// ListCategories возвращает категории из выгрузки
func (f *File) ListCategories(ctx context.Context) ([]models.Category, error) {
	cycle, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return cycle.ListCategories(ctx)
}

// ListUsers возвращает покупателей из выгрузки
func (f *File) ListUsers(ctx context.Context) ([]models.User, error) {
	cycle, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return cycle.ListUsers(ctx)
}

// ListFavorites возвращает избранное с нормализованной связью на товар
func (f *File) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	cycle, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return cycle.ListFavorites(ctx)
}

func (c *fileCycle) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.section(ctx, "orders", c.dump.Orders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *fileCycle) ListOrderItems(ctx context.Context) ([]models.OrderItem, error) {
	var records []itemRecord
	if err := c.section(ctx, "order_items", c.dump.OrderItems, &records); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(records))
	for _, rec := range records {
		items = append(items, models.OrderItem{
			OrderID:   rec.OrderID,
			ProductID: rec.ProductID,
			Quantity:  rec.Quantity,
			Price:     rec.Price,
			Product:   rec.Product.Ref,
		})
	}
	return items, nil
}

func (c *fileCycle) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.section(ctx, "products", c.dump.Products, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *fileCycle) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.section(ctx, "categories", c.dump.Categories, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *fileCycle) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.section(ctx, "users", c.dump.Users, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *fileCycle) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	var records []favoriteRecord
	if err := c.section(ctx, "favorites", c.dump.Favorites, &records); err != nil {
		return nil, err
	}

	favorites := make([]models.Favorite, 0, len(records))
	for _, rec := range records {
		favorites = append(favorites, models.Favorite{
			ID:        rec.ID,
			ProductID: rec.ProductID,
			UserID:    rec.UserID,
			Product:   rec.Product.Ref,
		})
	}
	return favorites, nil
}

// section декодирует одну коллекцию. Отсутствующая коллекция дает пустой список.
func (c *fileCycle) section(ctx context.Context, name string, raw json.RawMessage, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s in %s: %w", name, c.path, err)
	}
	return nil
}

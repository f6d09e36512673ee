package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"grocery-analytics/internal/database"
	"grocery-analytics/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &database.DB{DB: db}, mock
}

func TestPostgres_ListOrders(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgres(db)

	orderID, userID := uuid.New(), uuid.New()
	created := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, user_id, total_amount, status, payment_method, created_at\\s+FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status", "payment_method", "created_at"}).
			AddRow(orderID.String(), userID.String(), "120.50", "delivered", "card", created).
			AddRow(uuid.New().String(), nil, "10", "cancelled", nil, created))

	orders, err := repo.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}

	first := orders[0]
	if first.ID != orderID || first.UserID == nil || *first.UserID != userID {
		t.Fatalf("unexpected ids: %+v", first)
	}
	if first.TotalAmount.String() != "120.5" || first.Status != models.OrderStatusDelivered || first.PaymentMethod != "card" {
		t.Fatalf("unexpected order fields: %+v", first)
	}
	if orders[1].UserID != nil || orders[1].PaymentMethod != "" {
		t.Fatalf("expected NULL columns to decode to zero values: %+v", orders[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_ListOrderItems_MissingProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgres(db)

	orderID, productID, categoryID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT oi.order_id, oi.product_id, oi.quantity, oi.price").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "quantity", "price", "id", "name", "images", "category_id"}).
			AddRow(orderID.String(), productID.String(), 3, "2.50", productID.String(), "Milk", "{https://cdn.example.com/milk.png}", categoryID.String()).
			AddRow(orderID.String(), nil, 1, "9.99", nil, nil, nil, nil))

	items, err := repo.ListOrderItems(context.Background())
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	ref := items[0].Product
	if ref == nil || ref.ID != productID || ref.Name != "Milk" {
		t.Fatalf("unexpected joined product: %+v", ref)
	}
	if ref.Thumbnail() != "https://cdn.example.com/milk.png" {
		t.Fatalf("unexpected thumbnail: %q", ref.Thumbnail())
	}
	if ref.CategoryID == nil || *ref.CategoryID != categoryID {
		t.Fatalf("unexpected category: %+v", ref.CategoryID)
	}
	if items[0].Quantity != 3 || items[0].Price.String() != "2.5" {
		t.Fatalf("unexpected item: %+v", items[0])
	}

	if items[1].Product != nil || items[1].ProductID != nil {
		t.Fatalf("deleted product must decode to nil: %+v", items[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_ListProducts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgres(db)

	productID := uuid.New()
	mock.ExpectQuery("SELECT id, name, category_id, stock, is_featured, is_on_sale, images\\s+FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category_id", "stock", "is_featured", "is_on_sale", "images"}).
			AddRow(productID.String(), "Bread", nil, 4, true, false, "{a.png,b.png}"))

	products, err := repo.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.ID != productID || p.CategoryID != nil || p.Stock != 4 || !p.IsFeatured || p.IsOnSale {
		t.Fatalf("unexpected product: %+v", p)
	}
	if len(p.Images) != 2 || p.Images[0] != "a.png" {
		t.Fatalf("unexpected images: %v", p.Images)
	}
}

func TestPostgres_ListCategoriesAndUsers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgres(db)

	categoryID, userID := uuid.New(), uuid.New()
	created := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, name\\s+FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(categoryID.String(), "Dairy"))
	mock.ExpectQuery("SELECT id, created_at\\s+FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(userID.String(), created))

	categories, err := repo.ListCategories(context.Background())
	if err != nil || len(categories) != 1 || categories[0].Name != "Dairy" {
		t.Fatalf("unexpected categories: %+v err=%v", categories, err)
	}

	users, err := repo.ListUsers(context.Background())
	if err != nil || len(users) != 1 || users[0].ID != userID || !users[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected users: %+v err=%v", users, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_ListFavorites(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgres(db)

	favoriteID, productID, userID := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT f.id, f.product_id, f.user_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "id", "name", "images", "category_id"}).
			AddRow(favoriteID.String(), productID.String(), userID.String(), productID.String(), "Cheese", nil, nil).
			AddRow(uuid.New().String(), uuid.New().String(), userID.String(), nil, nil, nil, nil))

	favorites, err := repo.ListFavorites(context.Background())
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(favorites) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(favorites))
	}
	if favorites[0].Product == nil || favorites[0].Product.Name != "Cheese" || favorites[0].Product.Thumbnail() != "" {
		t.Fatalf("unexpected joined product: %+v", favorites[0].Product)
	}
	if favorites[1].Product != nil {
		t.Fatalf("dangling favorite must have nil product")
	}
}

func TestPostgres_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgres(db)

	mock.ExpectQuery("FROM orders").WillReturnError(errors.New("connection reset"))

	if _, err := repo.ListOrders(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgres_ScanError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgres(db)

	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("not-a-uuid", time.Now()))

	if _, err := repo.ListUsers(context.Background()); err == nil {
		t.Fatalf("expected scan error")
	}
}

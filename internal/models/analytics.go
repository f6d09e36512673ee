package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot - полный результат одного пересчета дашборда.
// Движок не хранит ссылок на снимок после возврата.
type Snapshot struct {
	GeneratedAt        time.Time           `json:"generated_at"`
	Range              ReportRange         `json:"range"`
	Revenue            RevenueSummary      `json:"revenue"`
	Orders             OrderSummary        `json:"orders"`
	Customers          CustomerSummary     `json:"customers"`
	Products           ProductSummary      `json:"products"`
	Favorites          FavoriteSummary     `json:"favorites"`
	DailySales         []DailyBucket       `json:"daily_sales"`
	HourlyDistribution []HourlyBucket      `json:"hourly_distribution"`
	CategoryBreakdown  []CategoryMetric    `json:"category_breakdown"`
	TopProducts        []ProductMetric     `json:"top_products"`
	PaymentMethods     []PaymentMetric     `json:"payment_methods"`
	OrderStatus        map[OrderStatus]int `json:"order_status"`
}

// RevenueSummary агрегирует выручку по действительным заказам.
type RevenueSummary struct {
	Total         decimal.Decimal `json:"total"`
	Today         decimal.Decimal `json:"today"`
	Week          decimal.Decimal `json:"week"`
	Month         decimal.Decimal `json:"month"`
	PreviousMonth decimal.Decimal `json:"previous_month"`
	Growth        float64         `json:"growth"`
}

// OrderSummary агрегирует счетчики заказов.
type OrderSummary struct {
	Total        int             `json:"total"`
	Today        int             `json:"today"`
	Week         int             `json:"week"`
	Month        int             `json:"month"`
	Pending      int             `json:"pending"`
	Completed    int             `json:"completed"`
	Cancelled    int             `json:"cancelled"`
	AverageValue decimal.Decimal `json:"average_value"`
}

// CustomerSummary агрегирует покупателей.
// Returning = Total - New, это приближение, а не когорта повторных покупок.
type CustomerSummary struct {
	Total           int `json:"total"`
	New             int `json:"new"`
	Returning       int `json:"returning"`
	ActiveThisMonth int `json:"active_this_month"`
}

// ProductSummary описывает состояние каталога.
type ProductSummary struct {
	Total      int `json:"total"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
	Featured   int `json:"featured"`
	OnSale     int `json:"on_sale"`
}

// FavoriteSummary описывает избранное.
type FavoriteSummary struct {
	Total       int              `json:"total"`
	TopProducts []FavoriteMetric `json:"top_products"`
}

// DailyBucket хранит заказы и выручку за календарный день.
type DailyBucket struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// HourlyBucket хранит заказы и выручку за час сегодняшнего дня.
type HourlyBucket struct {
	Hour    string          `json:"hour"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CategoryMetric - строка разбивки по категориям.
// OrderCount суммирует количество единиц в позициях, а не число заказов.
type CategoryMetric struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// ProductMetric - строка рейтинга продаваемых товаров.
// OrderCount суммирует количество проданных единиц.
type ProductMetric struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	Thumbnail  string          `json:"thumbnail,omitempty"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// PaymentMetric - строка разбивки по способам оплаты.
type PaymentMetric struct {
	Method  string          `json:"method"`
	Label   string          `json:"label"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// FavoriteMetric - строка рейтинга избранного.
type FavoriteMetric struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Count     int       `json:"count"`
}

// Package analytics превращает сырые коллекции магазина в снимок дашборда.
// Все функции пакета чистые: результат зависит только от входных коллекций,
// момента расчета и выбранного периода.
package analytics

import (
	"time"

	"grocery-analytics/internal/models"
)

// Dataset - сырые коллекции, прочитанные из хранилища за один цикл.
type Dataset struct {
	Orders     []models.Order
	OrderItems []models.OrderItem
	Products   []models.Product
	Categories []models.Category
	Users      []models.User
	Favorites  []models.Favorite
}

// Compute собирает полный снимок дашборда. Неизвестный период считается неделей.
func Compute(data *Dataset, now time.Time, rng models.ReportRange) *models.Snapshot {
	if data == nil {
		data = &Dataset{}
	}
	if !rng.Valid() {
		rng = models.RangeWeek
	}

	w := CalculateWindows(now, rng)

	revenue := SummarizeRevenue(data.Orders, w)
	favorites := models.FavoriteSummary{
		Total:       len(data.Favorites),
		TopProducts: FavoriteRanking(data.Favorites),
	}

	return &models.Snapshot{
		GeneratedAt:        now,
		Range:              rng,
		Revenue:            revenue,
		Orders:             SummarizeOrders(data.Orders, w),
		Customers:          SummarizeCustomers(data.Users, data.Orders, w),
		Products:           SummarizeProducts(data.Products),
		Favorites:          favorites,
		DailySales:         DailySeries(data.Orders, w),
		HourlyDistribution: HourlySeries(data.Orders, w),
		CategoryBreakdown:  CategoryBreakdown(data.OrderItems, data.Orders, data.Categories),
		TopProducts:        ProductBreakdown(data.OrderItems, data.Orders),
		PaymentMethods:     PaymentBreakdown(data.Orders),
		OrderStatus:        StatusBreakdown(data.Orders),
	}
}

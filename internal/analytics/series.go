package analytics

import (
	"fmt"

	"grocery-analytics/internal/models"

	"github.com/shopspring/decimal"
)

const (
	dateLayout  = "2006-01-02"
	hoursPerDay = 24
)

// DailySeries строит непрерывный ряд по дням от начала графика до now включительно.
// Каждый день присутствует в ряду, даже если заказов не было.
func DailySeries(orders []models.Order, w Windows) []models.DailyBucket {
	loc := w.Now.Location()
	first := dateOf(w.Chart.Start.In(loc))
	last := dateOf(w.Now)

	buckets := make([]models.DailyBucket, 0, int(last.Sub(first).Hours()/24)+2)
	index := make(map[string]int)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		index[key] = len(buckets)
		buckets = append(buckets, models.DailyBucket{Date: key, Revenue: decimal.Zero})
	}

	for i := range orders {
		order := &orders[i]
		if !order.IsValid() || !w.Chart.Contains(order.CreatedAt) {
			continue
		}
		pos, ok := index[order.CreatedAt.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		buckets[pos].Orders++
		buckets[pos].Revenue = buckets[pos].Revenue.Add(order.TotalAmount)
	}

	return buckets
}

// HourlySeries строит 24 часовых слота за сегодняшний день.
func HourlySeries(orders []models.Order, w Windows) []models.HourlyBucket {
	loc := w.Now.Location()

	buckets := make([]models.HourlyBucket, hoursPerDay)
	for hour := range buckets {
		buckets[hour] = models.HourlyBucket{Hour: fmt.Sprintf("%02d:00", hour), Revenue: decimal.Zero}
	}

	for i := range orders {
		order := &orders[i]
		if !order.IsValid() || !w.Today.Contains(order.CreatedAt) {
			continue
		}
		hour := order.CreatedAt.In(loc).Hour()
		buckets[hour].Orders++
		buckets[hour].Revenue = buckets[hour].Revenue.Add(order.TotalAmount)
	}

	return buckets
}

// Package export выгружает ряды дашборда во внешние форматы.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"grocery-analytics/internal/models"
)

var dailySalesHeader = []string{"Date", "Order Count", "Revenue"}

// WriteDailySalesCSV пишет дневной ряд продаж: заголовок и по строке на день.
// Выручка выводится с двумя знаками после запятой.
func WriteDailySalesCSV(w io.Writer, buckets []models.DailyBucket) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(dailySalesHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, bucket := range buckets {
		record := []string{bucket.Date, strconv.Itoa(bucket.Orders), bucket.Revenue.StringFixed(2)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", bucket.Date, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// DailySalesFilename возвращает имя файла выгрузки для снимка.
func DailySalesFilename(snapshot *models.Snapshot) string {
	return fmt.Sprintf("sales-%s-%s.csv", snapshot.Range, snapshot.GeneratedAt.Format("2006-01-02"))
}

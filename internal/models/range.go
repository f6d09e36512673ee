package models

import (
	"fmt"
	"strings"
)

// ReportRange - выбранный на дашборде период графика.
type ReportRange string

const (
	RangeWeek  ReportRange = "week"
	RangeMonth ReportRange = "month"
	RangeYear  ReportRange = "year"
)

// Days возвращает глубину графика в днях.
func (r ReportRange) Days() int {
	switch r {
	case RangeMonth:
		return 30
	case RangeYear:
		return 365
	default:
		return 7
	}
}

// Valid сообщает, известен ли период.
func (r ReportRange) Valid() bool {
	return r == RangeWeek || r == RangeMonth || r == RangeYear
}

// ParseReportRange разбирает период; пустая строка дает fallback.
func ParseReportRange(value string, fallback ReportRange) (ReportRange, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback, nil
	}
	r := ReportRange(value)
	if !r.Valid() {
		return "", fmt.Errorf("range must be one of: week, month, year")
	}
	return r, nil
}

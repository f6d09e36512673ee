package analytics

import (
	"time"

	"grocery-analytics/internal/models"
)

// Window - отчетный интервал, обе границы включительно.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains сообщает, попадает ли момент в интервал.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Windows - набор интервалов, рассчитанных от одного момента.
type Windows struct {
	Now           time.Time
	Today         Window
	ThisWeek      Window
	ThisMonth     Window
	PreviousMonth Window
	Chart         Window
}

// CalculateWindows строит интервалы относительно now в его часовом поясе.
// Неделя начинается с понедельника, месяцы имеют календарную длину.
func CalculateWindows(now time.Time, rng models.ReportRange) Windows {
	loc := now.Location()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	weekOffset := (int(now.Weekday()) + 6) % 7
	weekStart := dayStart.AddDate(0, 0, -weekOffset)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	return Windows{
		Now:           now,
		Today:         Window{Start: dayStart, End: endBefore(dayStart.AddDate(0, 0, 1))},
		ThisWeek:      Window{Start: weekStart, End: endBefore(weekStart.AddDate(0, 0, 7))},
		ThisMonth:     Window{Start: monthStart, End: endBefore(monthStart.AddDate(0, 1, 0))},
		PreviousMonth: Window{Start: prevMonthStart, End: endBefore(monthStart)},
		Chart:         Window{Start: now.AddDate(0, 0, -rng.Days()), End: now},
	}
}

func endBefore(next time.Time) time.Time {
	return next.Add(-time.Nanosecond)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

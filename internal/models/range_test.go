package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseReportRange(t *testing.T) {
	if r, err := ParseReportRange("", RangeMonth); err != nil || r != RangeMonth {
		t.Fatalf("expected fallback, got %s err=%v", r, err)
	}
	if r, err := ParseReportRange(" Year ", RangeWeek); err != nil || r != RangeYear {
		t.Fatalf("expected year, got %s err=%v", r, err)
	}
	if _, err := ParseReportRange("decade", RangeWeek); err == nil {
		t.Fatalf("expected error for unknown range")
	}
}

func TestReportRange_Days(t *testing.T) {
	cases := map[ReportRange]int{RangeWeek: 7, RangeMonth: 30, RangeYear: 365, ReportRange("x"): 7}
	for r, days := range cases {
		if r.Days() != days {
			t.Fatalf("%s: expected %d days, got %d", r, days, r.Days())
		}
	}
}

func TestOrderStatusHelpers(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusPreparing} {
		if !s.IsPending() {
			t.Fatalf("%s must be pending", s)
		}
	}
	if OrderStatusOnDelivery.IsPending() || OrderStatusDelivered.IsPending() {
		t.Fatalf("on_delivery and delivered are not pending")
	}

	order := Order{Status: OrderStatusCancelled}
	if order.IsValid() {
		t.Fatalf("cancelled order must be invalid")
	}

	item := OrderItem{Quantity: 3, Price: decimal.RequireFromString("1.15")}
	if !item.Subtotal().Equal(decimal.RequireFromString("3.45")) {
		t.Fatalf("unexpected subtotal: %s", item.Subtotal())
	}
}

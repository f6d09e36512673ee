package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"grocery-analytics/internal/models"

	"github.com/shopspring/decimal"
)

func TestWriteDailySalesCSV(t *testing.T) {
	buckets := []models.DailyBucket{
		{Date: "2024-03-13", Orders: 0, Revenue: decimal.Zero},
		{Date: "2024-03-14", Orders: 3, Revenue: decimal.RequireFromString("125.5")},
	}

	var buf bytes.Buffer
	if err := WriteDailySalesCSV(&buf, buckets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Date,Order Count,Revenue\n2024-03-13,0,0.00\n2024-03-14,3,125.50\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteDailySalesCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDailySalesCSV(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "Date,Order Count,Revenue\n" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteDailySalesCSV_WriterError(t *testing.T) {
	err := WriteDailySalesCSV(failingWriter{}, []models.DailyBucket{{Date: "2024-03-14"}})
	if err == nil {
		t.Fatalf("expected writer error")
	}
}

func TestDailySalesFilename(t *testing.T) {
	snapshot := &models.Snapshot{Range: models.RangeMonth, GeneratedAt: time.Date(2024, 3, 14, 15, 0, 0, 0, time.UTC)}
	if name := DailySalesFilename(snapshot); name != "sales-month-2024-03-14.csv" {
		t.Fatalf("unexpected filename %s", name)
	}
}

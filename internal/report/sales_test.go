package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/boxoffice/internal/store"
)

type stubSalesStore struct {
	totals []store.SalesTotals
	err    error

	lastStart string
	lastEnd   string
}

func (s *stubSalesStore) SalesTotals(_ context.Context, startDate, endDate string) ([]store.SalesTotals, error) {
	s.lastStart, s.lastEnd = startDate, endDate
	return s.totals, s.err
}

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubCompleter) ModelName() string { return "stub" }

func sampleTotals() []store.SalesTotals {
	return []store.SalesTotals{
		{EventName: "Bulls vs Heat", EventDate: "03/15/25", Quantity: 6, GrossSale: 1300, Profit: 120},
		{EventName: "Lakers vs Celtics", EventDate: "04/01/25", Quantity: 1, GrossSale: 95.5, Profit: 30},
	}
}

func TestGenerateAllTime(t *testing.T) {
	salesStore := &stubSalesStore{totals: sampleTotals()}
	r := NewReporter(salesStore, &stubCompleter{reply: "Bulls lead in volume."})

	got, err := r.Generate(context.Background(), "show me the sales report")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if salesStore.lastStart != "" || salesStore.lastEnd != "" {
		t.Errorf("date scope = (%q, %q), want all-time", salesStore.lastStart, salesStore.lastEnd)
	}
	for _, want := range []string{
		"SALES REPORT ALL-TIME",
		"Bulls vs Heat",
		"$1,300.00",
		"Total Quantity:",
		"INSIGHTS",
		"Bulls lead in volume.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestGenerateSingleDate(t *testing.T) {
	salesStore := &stubSalesStore{totals: sampleTotals()}
	r := NewReporter(salesStore, &stubCompleter{})

	if _, err := r.Generate(context.Background(), "sales report for 02/01/25"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if salesStore.lastStart != "02/01/25" || salesStore.lastEnd != "02/01/25" {
		t.Errorf("date scope = (%q, %q), want single day 02/01/25", salesStore.lastStart, salesStore.lastEnd)
	}
}

func TestGenerateDateRangeSortsDates(t *testing.T) {
	salesStore := &stubSalesStore{totals: sampleTotals()}
	r := NewReporter(salesStore, &stubCompleter{})

	// Dates given out of order must still form an ascending range.
	if _, err := r.Generate(context.Background(), "report from 02/10/25 back to 02/01/25"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if salesStore.lastStart != "02/01/25" || salesStore.lastEnd != "02/10/25" {
		t.Errorf("date scope = (%q, %q), want (02/01/25, 02/10/25)", salesStore.lastStart, salesStore.lastEnd)
	}
}

func TestGenerateFourDigitYear(t *testing.T) {
	salesStore := &stubSalesStore{totals: sampleTotals()}
	r := NewReporter(salesStore, &stubCompleter{})

	if _, err := r.Generate(context.Background(), "report for 02/01/2025"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if salesStore.lastStart != "02/01/25" {
		t.Errorf("start date = %q, want normalized 02/01/25", salesStore.lastStart)
	}
}

func TestGenerateNoData(t *testing.T) {
	r := NewReporter(&stubSalesStore{}, &stubCompleter{})

	got, err := r.Generate(context.Background(), "sales report")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "No sales data available all-time." {
		t.Errorf("Generate() = %q", got)
	}
}

func TestGenerateInsightsFailureDegrades(t *testing.T) {
	r := NewReporter(&stubSalesStore{totals: sampleTotals()}, &stubCompleter{err: errors.New("offline")})

	got, err := r.Generate(context.Background(), "sales report")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Contains(got, "INSIGHTS") {
		t.Error("report contains INSIGHTS section despite completion failure")
	}
	if !strings.Contains(got, "SALES REPORT") {
		t.Error("plain report missing")
	}
}

func TestGenerateStoreFailure(t *testing.T) {
	r := NewReporter(&stubSalesStore{err: errors.New("db locked")}, &stubCompleter{})

	if _, err := r.Generate(context.Background(), "sales report"); err == nil {
		t.Error("Generate() error = nil, want error")
	}
}

func TestParseDates(t *testing.T) {
	dates := parseDates("between 03/05/25 and 01/02/25 please")
	if len(dates) != 2 {
		t.Fatalf("parseDates() found %d dates, want 2", len(dates))
	}
	if !dates[0].Before(dates[1]) {
		t.Error("parseDates() not sorted ascending")
	}
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if !dates[0].Equal(want) {
		t.Errorf("first date = %v, want %v", dates[0], want)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{1234567.89, "$1,234,567.89"},
		{-950.25, "-$950.25"},
	}
	for _, tt := range tests {
		if got := formatCurrency(tt.value); got != tt.want {
			t.Errorf("formatCurrency(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

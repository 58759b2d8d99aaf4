// Package report generates text sales reports over the sales table.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hyperengineering/boxoffice/internal/completion"
	"github.com/hyperengineering/boxoffice/internal/store"
)

// datePattern matches MM/DD/YY or MM/DD/YYYY dates in free text.
var datePattern = regexp.MustCompile(`\b\d{2}/\d{2}/(?:\d{2}|\d{4})\b`)

const insightsSystemPrompt = "You are a helpful assistant providing concise sales analytics."

const insightsPrompt = `Analyze the following sales report and provide 3-5 key insights about sales performance, focusing on: highest/lowest performing events, notable patterns, and significant profit/loss items. Be concise and specific.

%s`

// SalesStore is the aggregation capability the reporter reads through.
type SalesStore interface {
	SalesTotals(ctx context.Context, startDate, endDate string) ([]store.SalesTotals, error)
}

// Reporter builds sales reports, optionally appending completion-service
// insights.
type Reporter struct {
	store     SalesStore
	completer completion.Completer
}

// NewReporter creates a Reporter.
func NewReporter(s SalesStore, completer completion.Completer) *Reporter {
	return &Reporter{store: s, completer: completer}
}

// Generate builds the report scoped by any dates found in userInput:
// two dates make a range, one date a single day, none means all-time.
func (r *Reporter) Generate(ctx context.Context, userInput string) (string, error) {
	dates := parseDates(userInput)

	var startDate, endDate, title string
	switch {
	case len(dates) >= 2:
		startDate = dates[0].Format("01/02/06")
		endDate = dates[len(dates)-1].Format("01/02/06")
		title = fmt.Sprintf("from %s to %s", startDate, endDate)
	case len(dates) == 1:
		startDate = dates[0].Format("01/02/06")
		endDate = startDate
		title = "for " + startDate
	default:
		title = "all-time"
	}

	totals, err := r.store.SalesTotals(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("generate sales report: %w", err)
	}

	if len(totals) == 0 {
		return fmt.Sprintf("No sales data available %s.", title), nil
	}

	body := formatReport(title, totals)

	// Insights are best effort; the plain report stands on its own.
	insights, err := r.completer.Complete(ctx, insightsSystemPrompt, fmt.Sprintf(insightsPrompt, body))
	if err != nil {
		slog.Warn("sales report insights unavailable", "error", err)
		return body, nil
	}

	divider := strings.Repeat("=", 100)
	return body + "\n\nINSIGHTS\n" + strings.Repeat("-", 100) + "\n" + insights + "\n" + divider, nil
}

// parseDates extracts and sorts all MM/DD/YY(YY) dates found in input.
func parseDates(input string) []time.Time {
	var dates []time.Time
	for _, match := range datePattern.FindAllString(input, -1) {
		parsed, err := time.Parse("01/02/06", match)
		if err != nil {
			parsed, err = time.Parse("01/02/2006", match)
		}
		if err != nil {
			continue
		}
		dates = append(dates, parsed)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func formatReport(title string, totals []store.SalesTotals) string {
	heavy := strings.Repeat("=", 100)
	light := strings.Repeat("-", 100)

	var totalQuantity int64
	var totalSales, totalProfit float64

	var b strings.Builder
	b.WriteString("\n" + heavy + "\n")
	fmt.Fprintf(&b, "SALES REPORT %s\n", strings.ToUpper(title))
	b.WriteString(heavy + "\n\n")

	fmt.Fprintf(&b, "%-50s %-12s %-10s %-15s %-15s\n", "Event", "Event Date", "Quantity", "Total Sales", "Total Profit")
	b.WriteString(light + "\n")

	for _, t := range totals {
		fmt.Fprintf(&b, "%-50s %-12s %-10d %-15s %-15s\n",
			truncate(t.EventName, 50), t.EventDate, t.Quantity,
			formatCurrency(t.GrossSale), formatCurrency(t.Profit))
		totalQuantity += t.Quantity
		totalSales += t.GrossSale
		totalProfit += t.Profit
	}

	b.WriteString("\n" + heavy + "\n")
	b.WriteString("SUMMARY\n")
	b.WriteString(light + "\n")
	fmt.Fprintf(&b, "Total Events:     %10d\n", len(totals))
	fmt.Fprintf(&b, "Total Quantity:   %10d\n", totalQuantity)
	fmt.Fprintf(&b, "Total Sales:      %10s\n", formatCurrency(totalSales))
	fmt.Fprintf(&b, "Total Profit:     %10s\n", formatCurrency(totalProfit))
	b.WriteString(heavy)

	return b.String()
}

// formatCurrency renders value as $X,XXX.XX.
func formatCurrency(value float64) string {
	negative := value < 0
	if negative {
		value = -value
	}

	s := fmt.Sprintf("%.2f", value)
	intPart, fracPart, _ := strings.Cut(s, ".")
	for i := len(intPart) - 3; i > 0; i -= 3 {
		intPart = intPart[:i] + "," + intPart[i:]
	}

	out := "$" + intPart + "." + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

package store

import (
	"context"
	"fmt"
)

// Sale is one row of the sales table. Dates are MM/DD/YY strings, matching
// the feed this table is loaded from.
type Sale struct {
	EventName string
	EventDate string
	SaleDate  string
	Quantity  int64
	GrossSale float64
	Profit    float64
}

// SalesTotals is per-event aggregated sales.
type SalesTotals struct {
	EventName string
	EventDate string
	Quantity  int64
	GrossSale float64
	Profit    float64
}

// InsertSale stores a sale row.
func (s *EventStore) InsertSale(ctx context.Context, sale Sale) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (event_name, event_date, sale_date, quantity, gross_sale, profit)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sale.EventName, sale.EventDate, sale.SaleDate, sale.Quantity, sale.GrossSale, sale.Profit)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// SalesTotals aggregates sales grouped by event. startDate/endDate are
// MM/DD/YY strings; both empty means all-time, equal values mean a single
// day. Results are ordered by event date.
func (s *EventStore) SalesTotals(ctx context.Context, startDate, endDate string) ([]SalesTotals, error) {
	query := `
		SELECT event_name, event_date,
		       SUM(quantity), SUM(gross_sale), SUM(profit)
		FROM sales`
	var args []any
	if startDate != "" && endDate != "" {
		query += ` WHERE substr(sale_date, 1, 8) BETWEEN ? AND ?`
		args = append(args, startDate, endDate)
	}
	query += ` GROUP BY event_name, event_date ORDER BY event_date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales totals: %w", err)
	}
	defer rows.Close()

	var totals []SalesTotals
	for rows.Next() {
		var t SalesTotals
		if err := rows.Scan(&t.EventName, &t.EventDate, &t.Quantity, &t.GrossSale, &t.Profit); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

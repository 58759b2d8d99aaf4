package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperengineering/boxoffice/internal/types"
	_ "modernc.org/sqlite"
)

// readableColumns whitelists columns that may appear in generated SQL.
// Event names match by case-insensitive substring throughout; explicit ids
// narrow the match to a single row.
var readableColumns = map[string]bool{
	"id":           true,
	"event_name":   true,
	"venue":        true,
	"event_date":   true,
	"section":      true,
	"row":          true,
	"ticket_price": true,
	"num_tickets":  true,
	"region":       true,
	"performer":    true,
}

// mutableColumn is the sole column writes are allowed to touch.
const mutableColumn = "ticket_price"

// EventStore is the SQLite-backed events and sales database.
type EventStore struct {
	db *sql.DB
}

// NewEventStore opens (creating if needed) the database at dbPath,
// applies pragmas, and runs migrations.
func NewEventStore(dbPath string) (*EventStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &EventStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *EventStore) Close() error {
	return s.db.Close()
}

// EventCount returns the number of event rows.
func (s *EventStore) EventCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	return count, err
}

// GetTicketPrice returns the ticket price of the first row matching name
// (and id, when non-nil).
func (s *EventStore) GetTicketPrice(ctx context.Context, name string, id *int64) (float64, error) {
	var price float64
	var err error
	if id != nil {
		err = s.db.QueryRowContext(ctx, `
			SELECT ticket_price FROM events
			WHERE id = ? AND event_name LIKE ? COLLATE NOCASE
		`, *id, pattern(name)).Scan(&price)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT ticket_price FROM events
			WHERE event_name LIKE ? COLLATE NOCASE
		`, pattern(name)).Scan(&price)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get ticket price: %w", err)
	}
	return price, nil
}

// FieldValue returns the display value of field for the first row matching
// name (and id, when non-nil). Unknown fields are rejected before any SQL
// is built.
func (s *EventStore) FieldValue(ctx context.Context, name, field string, id *int64) (string, error) {
	if !readableColumns[field] {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	// field is whitelisted above; row values arrive as driver-native types.
	query := fmt.Sprintf(`SELECT "%s" FROM events WHERE event_name LIKE ? COLLATE NOCASE`, field)
	args := []any{pattern(name)}
	if id != nil {
		query = fmt.Sprintf(`SELECT "%s" FROM events WHERE id = ? AND event_name LIKE ? COLLATE NOCASE`, field)
		args = []any{*id, pattern(name)}
	}

	var value any
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", field, err)
	}

	switch v := value.(type) {
	case float64:
		return fmt.Sprintf("%.2f", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// UpdateField writes value to field for all rows matching name, or the
// single row when id is non-nil. Only ticket_price is mutable and the value
// must be non-negative. The update is a single atomic statement; the old
// price is read first so callers can report before/after.
func (s *EventStore) UpdateField(ctx context.Context, name, field string, value float64, id *int64) (oldValue, newValue float64, err error) {
	if field != mutableColumn {
		return 0, 0, fmt.Errorf("cannot modify %s: %w", field, ErrProtectedField)
	}
	if value < 0 {
		return 0, 0, ErrNegativePrice
	}

	oldValue, err = s.GetTicketPrice(ctx, name, id)
	if err != nil {
		return 0, 0, err
	}

	if id != nil {
		_, err = s.db.ExecContext(ctx, `
			UPDATE events SET ticket_price = ?
			WHERE id = ? AND event_name LIKE ? COLLATE NOCASE
		`, value, *id, pattern(name))
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE events SET ticket_price = ?
			WHERE event_name LIKE ? COLLATE NOCASE
		`, value, pattern(name))
	}
	if err != nil {
		return 0, 0, fmt.Errorf("update ticket price: %w", err)
	}

	return oldValue, value, nil
}

const eventColumns = "id, event_name, venue, event_date, section, row, ticket_price, num_tickets, region, performer"

// MatchingEvents returns all events matching name (and id, when non-nil),
// ordered by event date.
func (s *EventStore) MatchingEvents(ctx context.Context, name string, id *int64) ([]types.Event, error) {
	var rows *sql.Rows
	var err error
	if id != nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+eventColumns+` FROM events
			WHERE id = ? AND event_name LIKE ? COLLATE NOCASE
			ORDER BY event_date
		`, *id, pattern(name))
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+eventColumns+` FROM events
			WHERE event_name LIKE ? COLLATE NOCASE
			ORDER BY event_date
		`, pattern(name))
	}
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventByID returns the event with the given id.
func (s *EventStore) EventByID(ctx context.Context, id int64) (*types.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return event, nil
}

// ListEvents returns all events ordered by event date.
func (s *EventStore) ListEvents(ctx context.Context) ([]types.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY event_date`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventNames returns the distinct event names in alphabetical order, for
// suggesting corrections when a name lookup finds nothing.
func (s *EventStore) EventNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT event_name FROM events ORDER BY event_name")
	if err != nil {
		return nil, fmt.Errorf("list event names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// InsertEvent stores a new event row and returns its id.
func (s *EventStore) InsertEvent(ctx context.Context, e types.Event) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (event_name, venue, event_date, section, row, ticket_price, num_tickets, region, performer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.EventName, e.Venue, e.EventDate, e.Section, e.Row, e.TicketPrice, e.NumTickets, e.Region, e.Performer)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return res.LastInsertId()
}

func scanEvents(rows *sql.Rows) ([]types.Event, error) {
	var events []types.Event
	for rows.Next() {
		var e types.Event
		if err := rows.Scan(&e.ID, &e.EventName, &e.Venue, &e.EventDate, &e.Section, &e.Row,
			&e.TicketPrice, &e.NumTickets, &e.Region, &e.Performer); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*types.Event, error) {
	var e types.Event
	if err := row.Scan(&e.ID, &e.EventName, &e.Venue, &e.EventDate, &e.Section, &e.Row,
		&e.TicketPrice, &e.NumTickets, &e.Region, &e.Performer); err != nil {
		return nil, err
	}
	return &e, nil
}

// pattern wraps name for substring matching.
func pattern(name string) string {
	return "%" + name + "%"
}

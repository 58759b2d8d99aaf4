package assistant

import (
	"strings"
	"testing"

	"github.com/hyperengineering/boxoffice/internal/types"
)

func TestFormatEventTable(t *testing.T) {
	events := []types.Event{
		{ID: 1, EventName: "Chicago Bulls vs Miami Heat", Venue: "United Center",
			EventDate: "03/15/25", TicketPrice: 50, NumTickets: 120},
		{ID: 2, EventName: strings.Repeat("Very Long Event Name ", 5), Venue: "Somewhere",
			EventDate: "04/01/25", TicketPrice: 95.5, NumTickets: 80},
	}

	got := FormatEventTable(events)
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("table has %d lines, want 4:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], "Event Name") || !strings.Contains(lines[0], "Ticket Price") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "$50.00") {
		t.Errorf("row = %q", lines[2])
	}
	// Long names are truncated to keep columns aligned.
	if strings.Contains(lines[3], strings.Repeat("Very Long Event Name ", 5)) {
		t.Error("long event name not truncated")
	}
}

func TestFormatEventDetails(t *testing.T) {
	got := formatEventDetails(types.Event{
		ID: 7, EventName: "Bulls vs Heat", Venue: "United Center",
		EventDate: "03/15/25", TicketPrice: 50,
	})

	for _, want := range []string{"Event ID: 7", "Name: Bulls vs Heat", "Price: $50.00", "Venue: United Center", "Date: 03/15/25"} {
		if !strings.Contains(got, want) {
			t.Errorf("details missing %q:\n%s", want, got)
		}
	}
}

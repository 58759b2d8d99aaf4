package assistant

import (
	"fmt"
	"strings"

	"github.com/hyperengineering/boxoffice/internal/types"
)

// FormatEventTable renders events as the fixed-width listing shown to users
// and by the events CLI command.
func FormatEventTable(events []types.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-40s %-15s %-15s %-30s %s\n",
		"ID", "Event Name", "Ticket Price", "Num Tickets", "Venue", "Date")
	b.WriteString(strings.Repeat("=", 110))

	for _, e := range events {
		fmt.Fprintf(&b, "\n%-5d %-40s $%-14.2f %-15d %-30s %s",
			e.ID, truncate(e.EventName, 38), e.TicketPrice, e.NumTickets, truncate(e.Venue, 28), e.EventDate)
	}

	return b.String()
}

// formatEventDetails renders one event's full details.
func formatEventDetails(e types.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event ID: %d\n", e.ID)
	fmt.Fprintf(&b, "Name: %s\n", e.EventName)
	fmt.Fprintf(&b, "Price: $%.2f\n", e.TicketPrice)
	fmt.Fprintf(&b, "Venue: %s\n", e.Venue)
	fmt.Fprintf(&b, "Date: %s\n", e.EventDate)
	b.WriteString(strings.Repeat("-", 50))
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

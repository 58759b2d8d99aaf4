// Package discovery finds upcoming events through the Ticketmaster
// Discovery API, with search parameters extracted from free text by the
// completion service.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperengineering/boxoffice/internal/completion"
	"github.com/hyperengineering/boxoffice/internal/config"
)

const parseSystemPrompt = "You are a data analyst that interacts with ticketing data. " +
	"Parse the query to extract search parameters."

const parsePrompt = `Extract event search parameters from this query: %q

Return a JSON object with any of these keys that apply (omit the rest):
- keyword: keyword to filter events
- city: the city to search for events
- stateCode: two-letter state code to filter events
- size: number of events to return

Return only the JSON object.`

// SearchParams are the Ticketmaster search parameters parsed from a query.
type SearchParams struct {
	Keyword   string `json:"keyword"`
	City      string `json:"city"`
	StateCode string `json:"stateCode"`
	Size      int    `json:"size"`
}

// Client calls the Ticketmaster Discovery API.
type Client struct {
	apiKey      string
	baseURL     string
	countryCode string
	defaultSize int
	completer   completion.Completer
	httpClient  *http.Client
}

// NewClient creates a discovery Client.
func NewClient(cfg config.DiscoveryConfig, completer completion.Completer) *Client {
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		countryCode: cfg.CountryCode,
		defaultSize: cfg.DefaultSize,
		completer:   completer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether a Ticketmaster API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// GetEvents answers a free-text event search with a formatted listing.
func (c *Client) GetEvents(ctx context.Context, userQuery string) (string, error) {
	params := c.parseQuery(ctx, userQuery)
	events, err := c.fetchEvents(ctx, params)
	if err != nil {
		return "", err
	}
	return formatEvents(events), nil
}

// parseQuery extracts search parameters from the query. Parse failures
// degrade to an unfiltered search rather than an error.
func (c *Client) parseQuery(ctx context.Context, userQuery string) SearchParams {
	var params SearchParams

	reply, err := c.completer.Complete(ctx, parseSystemPrompt, fmt.Sprintf(parsePrompt, userQuery))
	if err != nil {
		slog.Warn("discovery query parse failed", "error", err)
		return params
	}

	if err := json.Unmarshal([]byte(completion.StripCodeFence(reply)), &params); err != nil {
		slog.Warn("discovery query parse returned malformed JSON", "error", err)
		return SearchParams{}
	}
	return params
}

type tmResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	PriceRanges []struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"priceRanges"`
	Embedded struct {
		Venues []tmVenue `json:"venues"`
	} `json:"_embedded"`
}

type tmVenue struct {
	Name string `json:"name"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		StateCode string `json:"stateCode"`
	} `json:"state"`
}

// fetchEvents calls the Discovery API with the given parameters.
func (c *Client) fetchEvents(ctx context.Context, params SearchParams) ([]tmEvent, error) {
	size := params.Size
	if size <= 0 {
		size = c.defaultSize
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("size", strconv.Itoa(size))
	q.Set("countryCode", c.countryCode)
	if params.City != "" {
		q.Set("city", params.City)
	}
	if params.Keyword != "" {
		q.Set("keyword", params.Keyword)
	}
	if params.StateCode != "" {
		q.Set("stateCode", params.StateCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build discovery request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery request failed: status %d", resp.StatusCode)
	}

	var parsed tmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode discovery response: %w", err)
	}

	return parsed.Embedded.Events, nil
}

// formatEvents renders the listing shown to the user.
func formatEvents(events []tmEvent) string {
	if len(events) == 0 {
		return "No upcoming events found. Try modifying your search terms."
	}

	divider := strings.Repeat("-", 80)

	var b strings.Builder
	b.WriteString("\nUpcoming Events\n")
	b.WriteString(divider)
	b.WriteString("\n")

	for _, event := range events {
		date := event.Dates.Start.LocalDate
		if date == "" {
			date = "TBA"
		}
		eventTime := event.Dates.Start.LocalTime
		if eventTime == "" {
			eventTime = "TBA"
		}
		fmt.Fprintf(&b, "%s\n", event.Name)
		fmt.Fprintf(&b, "Date: %s at %s\n", date, eventTime)

		if len(event.Embedded.Venues) > 0 {
			venue := event.Embedded.Venues[0]
			fmt.Fprintf(&b, "Location: %s - %s, %s\n", venue.Name, venue.City.Name, venue.State.StateCode)
		}

		if len(event.PriceRanges) > 0 {
			price := event.PriceRanges[0]
			fmt.Fprintf(&b, "Prices: $%.2f - $%.2f\n", price.Min, price.Max)
		}

		if event.URL != "" {
			fmt.Fprintf(&b, "Tickets: %s\n", event.URL)
		}

		b.WriteString(divider)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

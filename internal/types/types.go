// Package types defines shared domain and API types.
package types

// Event is one row of the events table.
type Event struct {
	ID          int64   `json:"id"`
	EventName   string  `json:"event_name"`
	Venue       string  `json:"venue"`
	EventDate   string  `json:"event_date"`
	Section     string  `json:"section"`
	Row         string  `json:"row"`
	TicketPrice float64 `json:"ticket_price"`
	NumTickets  int64   `json:"num_tickets"`
	Region      string  `json:"region"`
	Performer   string  `json:"performer"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChatResponse is the reply envelope for POST /api/v1/chat.
// Proposal prompts and final answers share the same textual channel.
type ChatResponse struct {
	Response string `json:"response"`
}

// HealthResponse is the reply for GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	EmbeddingModel  string `json:"embedding_model"`
	CompletionModel string `json:"completion_model"`
	EventCount      int64  `json:"event_count"`
}

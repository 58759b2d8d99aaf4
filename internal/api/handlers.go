package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/boxoffice/internal/assistant"
	"github.com/hyperengineering/boxoffice/internal/types"
	"github.com/hyperengineering/boxoffice/internal/validation"
)

// Engine handles one chat message to completion.
type Engine interface {
	HandleMessage(ctx context.Context, userID, message string) string
}

// EventLister provides the event data the read-only endpoints need.
type EventLister interface {
	ListEvents(ctx context.Context) ([]types.Event, error)
	EventCount(ctx context.Context) (int64, error)
}

// Handler implements the API handlers
type Handler struct {
	engine          Engine
	events          EventLister
	apiKey          string
	version         string
	embeddingModel  string
	completionModel string
}

// NewHandler creates a new Handler
func NewHandler(engine Engine, events EventLister, apiKey, version, embeddingModel, completionModel string) *Handler {
	return &Handler{
		engine:          engine,
		events:          events,
		apiKey:          apiKey,
		version:         version,
		embeddingModel:  embeddingModel,
		completionModel: completionModel,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.events.EventCount(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := types.HealthResponse{
		Status:          "healthy",
		Version:         h.version,
		EmbeddingModel:  h.embeddingModel,
		CompletionModel: h.completionModel,
		EventCount:      count,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Chat handles POST /api/v1/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if req.UserID == "" {
		req.UserID = "default_user"
	}

	if errs := validation.ValidateChatMessage(req.UserID, req.Message); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	response := h.engine.HandleMessage(r.Context(), req.UserID, req.Message)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(types.ChatResponse{Response: response}); err != nil {
		slog.Error("failed to encode chat response", "error", err)
	}
}

// ListEvents handles GET /api/v1/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		slog.Error("event listing failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	accept := r.Header.Get("Accept")
	if accept == "text/plain" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, assistant.FormatEventTable(events))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if events == nil {
		events = []types.Event{}
	}
	json.NewEncoder(w).Encode(events)
}

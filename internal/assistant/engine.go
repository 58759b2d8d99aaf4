// Package assistant routes each incoming user message to the right
// capability: the confirmation handshake, event discovery, sales reports,
// interpreted data queries, or a plain assistant reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hyperengineering/boxoffice/internal/completion"
	"github.com/hyperengineering/boxoffice/internal/pricing"
	"github.com/hyperengineering/boxoffice/internal/semantic"
	"github.com/hyperengineering/boxoffice/internal/session"
	"github.com/hyperengineering/boxoffice/internal/store"
	"github.com/hyperengineering/boxoffice/internal/types"
	"github.com/hyperengineering/boxoffice/internal/workflow"
)

// EventStore is the row-store capability the engine reads through.
type EventStore interface {
	GetTicketPrice(ctx context.Context, name string, id *int64) (float64, error)
	FieldValue(ctx context.Context, name, field string, id *int64) (string, error)
	MatchingEvents(ctx context.Context, name string, id *int64) ([]types.Event, error)
	EventByID(ctx context.Context, id int64) (*types.Event, error)
	ListEvents(ctx context.Context) ([]types.Event, error)
	EventNames(ctx context.Context) ([]string, error)
}

// Interpreter turns raw query text into a structured interpretation.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (*semantic.Interpretation, error)
}

// Discoverer answers free-text event searches.
type Discoverer interface {
	Enabled() bool
	GetEvents(ctx context.Context, query string) (string, error)
}

// Reporter generates sales reports.
type Reporter interface {
	Generate(ctx context.Context, input string) (string, error)
}

const assistantSystemPrompt = "You are a helpful assistant for an events and ticketing service. " +
	"Answer briefly and stay on topic."

// Canned user-facing messages.
const (
	msgCannotUnderstand = "I couldn't understand your query."
	msgNoEvent          = "I couldn't determine which event you meant."
	msgNegativePrice    = "Price cannot be negative. Operation cancelled."
	msgOnlyPrices       = "Sorry, I can only modify ticket prices right now."
)

// historicalIndicators route past-data questions to the plain assistant.
var historicalIndicators = []string{"previous", "past", "last", "before", "historical", "history"}

// dataKeywords gate whether a message is worth interpreting at all.
var dataKeywords = []string{"event", "ticket", "price", "display", "all", "increase", "decrease", "set"}

// Engine is the produced interface of this core: a function from
// (user id, raw message) to response text. Proposal prompts and final
// answers share the same channel.
type Engine struct {
	store       EventStore
	interpreter Interpreter
	workflow    *workflow.Workflow
	discovery   Discoverer
	reporter    Reporter
	completer   completion.Completer
	sessions    *session.Manager
}

// NewEngine creates an Engine.
func NewEngine(
	s EventStore,
	interpreter Interpreter,
	wf *workflow.Workflow,
	disc Discoverer,
	rep Reporter,
	completer completion.Completer,
	sessions *session.Manager,
) *Engine {
	return &Engine{
		store:       s,
		interpreter: interpreter,
		workflow:    wf,
		discovery:   disc,
		reporter:    rep,
		completer:   completer,
		sessions:    sessions,
	}
}

// HandleMessage processes one user message to completion and always returns
// user-facing text; every failure in the pipeline is recovered here.
func (e *Engine) HandleMessage(ctx context.Context, userID, message string) string {
	// Whitespace cleanup only; no spell checking.
	message = strings.Join(strings.Fields(message), " ")
	lower := strings.ToLower(message)

	// The handshake sees every message first: a confirmation or cancellation
	// must resolve before anything else runs.
	if resp, handled := e.workflow.HandleMessage(ctx, userID, message); handled {
		return resp
	}

	for _, indicator := range historicalIndicators {
		if strings.Contains(lower, indicator) {
			return e.assistantReply(ctx, userID, message)
		}
	}

	if strings.Contains(lower, "sales report") {
		return e.salesReport(ctx, message)
	}

	if containsAny(lower, dataKeywords) {
		interp, err := e.interpreter.Interpret(ctx, message)
		if err != nil {
			slog.Warn("query interpretation failed", "user_id", userID, "error", err)
			return msgCannotUnderstand
		}
		if interp.Action == "" {
			return msgCannotUnderstand
		}
		return e.handleDataQuery(ctx, userID, interp)
	}

	return e.assistantReply(ctx, userID, message)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// handleDataQuery acts on a resolved interpretation.
func (e *Engine) handleDataQuery(ctx context.Context, userID string, interp *semantic.Interpretation) string {
	eventName := semantic.ExtractEventName(interp.EventName)

	switch interp.Action {
	case semantic.ActionView:
		name := eventName
		if name == "" {
			name = "all"
		}
		return e.handleView(ctx, name, interp.Field, interp.SpecificID)

	case semantic.ActionReport:
		return e.salesReport(ctx, interp.OriginalQuery)

	case semantic.ActionDiscover:
		return e.discoverEvents(ctx, interp.OriginalQuery)
	}

	// A price change is proposed and confirmed by event name; an explicit id
	// narrows the match but cannot replace the name.
	if eventName == "" {
		return msgNoEvent
	}

	return e.handleModification(ctx, userID, eventName, interp)
}

// handleModification validates a price-modification intent and, when it
// yields a concrete non-negative price, stores a proposal and returns the
// confirmation prompt. No row is written here.
func (e *Engine) handleModification(ctx context.Context, userID, eventName string, interp *semantic.Interpretation) string {
	switch {
	case interp.Field == "":
		return msgOnlyPrices
	case interp.Field != semantic.FieldTicketPrice:
		// Protected target: refuse the write, answer with a view instead.
		refusal := fmt.Sprintf("Sorry, I can't modify the %s. This field is protected.", interp.Field)
		return refusal + "\n" + e.handleView(ctx, eventName, interp.Field, interp.SpecificID)
	}

	currentPrice, err := e.store.GetTicketPrice(ctx, eventName, interp.SpecificID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return e.eventNotFound(ctx, eventName)
		}
		slog.Error("price lookup failed", "event", eventName, "error", err)
		return fmt.Sprintf("Error processing price modification: %s", err)
	}

	newPrice, err := pricing.CalculateNewPrice(interp.Action, interp.MatchedAction, currentPrice, interp.Number)
	if err != nil {
		if errors.Is(err, pricing.ErrMissingOperand) {
			return fmt.Sprintf("Please specify the amount to %s the price by.", interp.Action)
		}
		return fmt.Sprintf("Error processing price modification: %s", err)
	}

	if newPrice < 0 {
		return msgNegativePrice
	}

	return e.workflow.Propose(userID, workflow.PendingChange{
		EventName:     eventName,
		CurrentPrice:  currentPrice,
		NewPrice:      newPrice,
		SpecificID:    interp.SpecificID,
		Action:        interp.Action,
		MatchedAction: interp.MatchedAction,
	})
}

// eventNotFound reports a failed name lookup, listing the known event names
// when they can be read so the user can correct the query.
func (e *Engine) eventNotFound(ctx context.Context, eventName string) string {
	msg := fmt.Sprintf("Could not find event '%s' in the database.", eventName)
	names, err := e.store.EventNames(ctx)
	if err != nil || len(names) == 0 {
		return msg
	}
	return msg + "\nKnown events: " + strings.Join(names, ", ")
}

// handleView answers view intents: the whole table for "all", full details
// by id, matching-event listings when no field resolved, or a single field.
func (e *Engine) handleView(ctx context.Context, eventName, field string, id *int64) string {
	if strings.EqualFold(eventName, "all") {
		events, err := e.store.ListEvents(ctx)
		if err != nil {
			slog.Error("event listing failed", "error", err)
			return "Could not list events right now."
		}
		return "=== All Events ===\n" + FormatEventTable(events)
	}

	if id != nil && field == "" {
		event, err := e.store.EventByID(ctx, *id)
		if err != nil {
			return fmt.Sprintf("No event found with ID %d", *id)
		}
		return formatEventDetails(*event)
	}

	if field == "" {
		matches, err := e.store.MatchingEvents(ctx, eventName, id)
		if err != nil || len(matches) == 0 {
			return fmt.Sprintf("No events found matching '%s'", eventName)
		}
		parts := make([]string, 0, len(matches)+1)
		parts = append(parts, fmt.Sprintf("Found %d matching events:", len(matches)))
		for _, m := range matches {
			parts = append(parts, formatEventDetails(m))
		}
		return strings.Join(parts, "\n")
	}

	value, err := e.store.FieldValue(ctx, eventName, field, id)
	if err != nil {
		return fmt.Sprintf("Could not find %s for %s", field, eventName)
	}

	suffix := ""
	if id != nil {
		suffix = fmt.Sprintf(" (ID: %d)", *id)
	}
	if field == semantic.FieldTicketPrice {
		return fmt.Sprintf("The ticket price for %s%s is: $%s", eventName, suffix, value)
	}
	return fmt.Sprintf("The %s for %s%s is: %s", field, eventName, suffix, value)
}

func (e *Engine) salesReport(ctx context.Context, message string) string {
	reportText, err := e.reporter.Generate(ctx, message)
	if err != nil {
		slog.Error("sales report failed", "error", err)
		return fmt.Sprintf("Error generating sales report: %s", err)
	}
	return reportText
}

func (e *Engine) discoverEvents(ctx context.Context, message string) string {
	if e.discovery == nil || !e.discovery.Enabled() {
		return "Event discovery is not available right now."
	}
	listing, err := e.discovery.GetEvents(ctx, message)
	if err != nil {
		slog.Error("event discovery failed", "error", err)
		return "Could not search for events right now. Try again later."
	}
	return listing
}

// assistantReply answers anything the structured pipeline does not claim.
// The user's active thread transcript rides along in the prompt so followup
// small talk keeps its context until the thread expires.
func (e *Engine) assistantReply(ctx context.Context, userID, message string) string {
	threadID := e.sessions.ThreadID(userID)

	prompt := message
	if history := e.sessions.History(userID); len(history) > 0 {
		prompt = "Previous conversation:\n" + strings.Join(history, "\n") + "\n\nUser: " + message
	}

	reply, err := e.completer.Complete(ctx, assistantSystemPrompt, prompt)
	if err != nil {
		slog.Warn("assistant reply failed", "user_id", userID, "thread_id", threadID, "error", err)
		return msgCannotUnderstand
	}

	e.sessions.Remember(userID, message, reply)
	slog.Debug("assistant reply", "user_id", userID, "thread_id", threadID)
	return reply
}

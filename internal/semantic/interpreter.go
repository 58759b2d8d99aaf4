package semantic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/boxoffice/internal/completion"
)

// Interpretation is the structured reading of one free-text query.
// Optional slots are pointers so consumers must handle absence explicitly.
// The record is immutable once returned by Interpret.
type Interpretation struct {
	// Raw slots extracted by the completion service.
	ActionWord string
	EventName  string
	RawField   string
	Number     *float64

	// SpecificID is an explicit row id extracted locally from the query text.
	SpecificID *int64

	// Resolved against the canonical vocabularies. Action is empty only when
	// no action phrase resolved; Field is empty when no field resolved.
	Action        ActionKind
	MatchedAction string
	Field         string

	OriginalQuery string
}

const interpretationPrompt = `Interpret this query: '%s' and return a JSON object with these keys:
- action_word: Extract the exact word or phrase used in the query that indicates the action
- event_name: Extract any event identifier or name mentioned
- field: what field to access (price, tickets, id, name, etc.)
- number: the amount to change by, multiply by, or divide by (null if viewing)

Examples:
- For "increase Bulls game ticket price by 100", return:
{"action_word": "increase", "event_name": "Bulls game", "field": "ticket price", "number": 100}
- For "show me Yankees vs Red Sox tickets", return:
{"action_word": "show", "event_name": "Yankees vs Red Sox", "field": "tickets", "number": null}
- For "what's happening at United Center", return:
{"action_word": "what's", "event_name": "United Center", "field": "event_name", "number": null}

Return only the JSON object.`

// Interpreter turns raw query text into an Interpretation by combining the
// local identifier extractor, completion-service slot extraction, and the
// vocabulary normalizer.
type Interpreter struct {
	completer  completion.Completer
	normalizer *Normalizer
}

// NewInterpreter creates an Interpreter.
func NewInterpreter(completer completion.Completer, normalizer *Normalizer) *Interpreter {
	return &Interpreter{completer: completer, normalizer: normalizer}
}

// rawSlots is the JSON shape the completion service is asked to produce.
type rawSlots struct {
	ActionWord string      `json:"action_word"`
	EventName  string      `json:"event_name"`
	Field      string      `json:"field"`
	Number     json.Number `json:"number"`
}

// Interpret produces the Interpretation for query. A completion-service
// failure or malformed payload returns an error the caller must treat as
// "could not interpret", never as fatal.
func (i *Interpreter) Interpret(ctx context.Context, query string) (*Interpretation, error) {
	interp := &Interpretation{OriginalQuery: query}

	// Local extraction first: it must never fail on service unavailability.
	if id, ok := ExtractID(query); ok {
		interp.SpecificID = &id
	}

	reply, err := i.completer.Complete(ctx, "", fmt.Sprintf(interpretationPrompt, query))
	if err != nil {
		return nil, fmt.Errorf("interpret query: %w", err)
	}

	var slots rawSlots
	if err := json.Unmarshal([]byte(completion.StripCodeFence(reply)), &slots); err != nil {
		return nil, fmt.Errorf("interpret query: malformed slot payload: %w", err)
	}

	interp.ActionWord = slots.ActionWord
	interp.EventName = slots.EventName
	interp.RawField = slots.Field
	if slots.Number != "" {
		if n, err := slots.Number.Float64(); err == nil {
			interp.Number = &n
		}
	}

	if kind, alias, ok := i.normalizer.ResolveAction(ctx, slots.ActionWord); ok {
		interp.Action = kind
		interp.MatchedAction = alias
	}
	if field, ok := i.normalizer.NormalizeField(ctx, slots.Field); ok {
		interp.Field = field
	}

	return interp, nil
}

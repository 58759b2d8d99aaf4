// Package workflow implements the guarded two-phase mutation handshake:
// a proposed price change is held per user and committed only on an exact
// confirmation, or discarded on cancellation.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hyperengineering/boxoffice/internal/semantic"
	"github.com/oklog/ulid/v2"
)

// Trigger phrases. Confirmation additionally requires the stored event name
// as a case-insensitive substring of the message.
const (
	ConfirmTrigger = "confirm price change for"
	CancelTrigger  = "cancel price change"
)

// Store is the row-update capability the workflow commits through.
type Store interface {
	UpdateField(ctx context.Context, name, field string, value float64, id *int64) (oldValue, newValue float64, err error)
}

// PendingChange is one stored proposal. At most one exists per user; it is
// held in memory only, so a crash mid-confirmation discards it without ever
// applying it.
type PendingChange struct {
	ProposalID    string
	EventName     string
	CurrentPrice  float64
	NewPrice      float64
	SpecificID    *int64
	Action        semantic.ActionKind
	MatchedAction string
}

// Workflow owns the per-user pending-change table.
type Workflow struct {
	mu      sync.Mutex
	store   Store
	pending map[string]PendingChange
}

// New creates a Workflow committing through store.
func New(store Store) *Workflow {
	return &Workflow{
		store:   store,
		pending: make(map[string]PendingChange),
	}
}

// Propose stores change for userID, overwriting any unconfirmed prior
// proposal (last-proposal-wins), and returns the confirmation prompt.
func (w *Workflow) Propose(userID string, change PendingChange) string {
	change.ProposalID = ulid.Make().String()

	w.mu.Lock()
	w.pending[userID] = change
	w.mu.Unlock()

	slog.Info("price change proposed",
		"proposal_id", change.ProposalID,
		"user_id", userID,
		"event", change.EventName,
		"current_price", change.CurrentPrice,
		"new_price", change.NewPrice,
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Proposed change for %s:\n", change.EventName)
	fmt.Fprintf(&b, "Action: %s (%s)\n", change.MatchedAction, change.Action)
	fmt.Fprintf(&b, "Current price: $%.2f\n", change.CurrentPrice)
	fmt.Fprintf(&b, "New price will be: $%.2f\n", change.NewPrice)
	b.WriteString("\nTo confirm this price change, reply with one of these:")
	fmt.Fprintf(&b, "\n1. '%s %s'", ConfirmTrigger, change.EventName)
	fmt.Fprintf(&b, "\n2. '%s'", CancelTrigger)
	return b.String()
}

// Pending returns the stored proposal for userID, if any.
func (w *Workflow) Pending(userID string) (PendingChange, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pending[userID]
	return p, ok
}

// HandleMessage inspects message against the stored proposal for userID.
// It returns (response, true) when the message resolved the handshake —
// committed, cancelled, or answered "nothing pending" — and ("", false)
// when the message is unrelated and should flow on to normal query
// handling, leaving any proposal open.
func (w *Workflow) HandleMessage(ctx context.Context, userID, message string) (string, bool) {
	lower := strings.ToLower(message)
	isConfirm := strings.Contains(lower, ConfirmTrigger)
	isCancel := strings.Contains(lower, CancelTrigger)

	w.mu.Lock()
	p, ok := w.pending[userID]
	w.mu.Unlock()

	if !ok {
		if isConfirm || isCancel {
			return "You have no pending price change.", true
		}
		return "", false
	}

	switch {
	// An empty stored name would make the substring check vacuously true, so
	// it can never confirm.
	case isConfirm && p.EventName != "" && strings.Contains(lower, strings.ToLower(p.EventName)):
		return w.commit(ctx, userID, p), true

	case isCancel:
		w.clear(userID)
		slog.Info("price change cancelled", "proposal_id", p.ProposalID, "user_id", userID)
		return "Price change cancelled.", true
	}

	// Neither trigger (or a confirmation naming the wrong event): leave the
	// proposal open and let the message flow through as an ordinary query.
	return "", false
}

// commit applies the stored proposal as a single atomic update. The pending
// entry is cleared only after the statement succeeds; a store failure keeps
// the proposal so the user can retry or cancel.
func (w *Workflow) commit(ctx context.Context, userID string, p PendingChange) string {
	oldPrice, newPrice, err := w.store.UpdateField(ctx, p.EventName, semantic.FieldTicketPrice, p.NewPrice, p.SpecificID)
	if err != nil {
		slog.Error("price update failed", "proposal_id", p.ProposalID, "event", p.EventName, "error", err)
		return fmt.Sprintf("Error updating price: %s", err)
	}

	w.clear(userID)
	slog.Info("price change committed",
		"proposal_id", p.ProposalID,
		"user_id", userID,
		"event", p.EventName,
		"old_price", oldPrice,
		"new_price", newPrice,
	)

	return fmt.Sprintf("Success! Price updated for %s!\nOld price: $%.2f\nNew price: $%.2f",
		p.EventName, oldPrice, newPrice)
}

func (w *Workflow) clear(userID string) {
	w.mu.Lock()
	delete(w.pending, userID)
	w.mu.Unlock()
}

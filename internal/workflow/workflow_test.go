package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperengineering/boxoffice/internal/semantic"
)

// fakeStore records the update it was asked to perform.
type fakeStore struct {
	err     error
	old     float64
	updates int

	lastName  string
	lastField string
	lastValue float64
	lastID    *int64
}

func (f *fakeStore) UpdateField(_ context.Context, name, field string, value float64, id *int64) (float64, float64, error) {
	f.updates++
	f.lastName, f.lastField, f.lastValue, f.lastID = name, field, value, id
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.old, value, nil
}

func proposal() PendingChange {
	return PendingChange{
		EventName:     "bulls",
		CurrentPrice:  50,
		NewPrice:      150,
		Action:        semantic.ActionIncrease,
		MatchedAction: "increase",
	}
}

func TestProposePrompt(t *testing.T) {
	w := New(&fakeStore{})

	prompt := w.Propose("u1", proposal())

	for _, want := range []string{
		"Proposed change for bulls",
		"Current price: $50.00",
		"New price will be: $150.00",
		"confirm price change for bulls",
		"cancel price change",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	p, ok := w.Pending("u1")
	if !ok {
		t.Fatal("Pending() ok = false after Propose")
	}
	if p.ProposalID == "" {
		t.Error("ProposalID is empty")
	}
}

func TestProposeOverwritesPrior(t *testing.T) {
	w := New(&fakeStore{})

	w.Propose("u1", proposal())
	second := proposal()
	second.NewPrice = 75
	w.Propose("u1", second)

	p, _ := w.Pending("u1")
	if p.NewPrice != 75 {
		t.Errorf("pending NewPrice = %v, want 75 (last proposal wins)", p.NewPrice)
	}
}

func TestConfirmCommits(t *testing.T) {
	store := &fakeStore{old: 50}
	w := New(store)
	w.Propose("u1", proposal())

	resp, handled := w.HandleMessage(context.Background(), "u1", "confirm price change for bulls")
	if !handled {
		t.Fatal("HandleMessage() handled = false, want true")
	}
	if !strings.Contains(resp, "Success!") ||
		!strings.Contains(resp, "Old price: $50.00") ||
		!strings.Contains(resp, "New price: $150.00") {
		t.Errorf("unexpected commit response: %q", resp)
	}

	if store.lastName != "bulls" || store.lastField != semantic.FieldTicketPrice || store.lastValue != 150 {
		t.Errorf("committed (%q, %q, %v)", store.lastName, store.lastField, store.lastValue)
	}
	if _, ok := w.Pending("u1"); ok {
		t.Error("proposal still pending after commit")
	}
}

func TestConfirmIsCaseInsensitive(t *testing.T) {
	w := New(&fakeStore{old: 50})
	w.Propose("u1", proposal())

	if _, handled := w.HandleMessage(context.Background(), "u1", "Confirm Price Change For BULLS"); !handled {
		t.Error("HandleMessage() handled = false for case-variant confirmation")
	}
}

func TestConfirmWrongEventFallsThrough(t *testing.T) {
	w := New(&fakeStore{})
	w.Propose("u1", proposal())

	resp, handled := w.HandleMessage(context.Background(), "u1", "confirm price change for lakers")
	if handled {
		t.Fatalf("HandleMessage() handled = true, want fall-through (resp %q)", resp)
	}
	if _, ok := w.Pending("u1"); !ok {
		t.Error("proposal was cleared by a mismatched confirmation")
	}
}

func TestConfirmRequiresStoredEventName(t *testing.T) {
	store := &fakeStore{}
	w := New(store)
	nameless := proposal()
	nameless.EventName = ""
	w.Propose("u1", nameless)

	// With no stored name the substring check must not match everything.
	resp, handled := w.HandleMessage(context.Background(), "u1", "confirm price change for some totally different event")
	if handled {
		t.Fatalf("HandleMessage() handled = true for nameless proposal (resp %q)", resp)
	}
	if store.updates != 0 {
		t.Errorf("store updates = %d, want 0", store.updates)
	}
}

func TestCancelDiscards(t *testing.T) {
	store := &fakeStore{}
	w := New(store)
	w.Propose("u1", proposal())

	resp, handled := w.HandleMessage(context.Background(), "u1", "cancel price change")
	if !handled || resp != "Price change cancelled." {
		t.Errorf("HandleMessage() = (%q, %v)", resp, handled)
	}
	if store.updates != 0 {
		t.Errorf("store updates = %d, want 0", store.updates)
	}
	if _, ok := w.Pending("u1"); ok {
		t.Error("proposal still pending after cancel")
	}
}

func TestTriggerWithoutPending(t *testing.T) {
	w := New(&fakeStore{})

	resp, handled := w.HandleMessage(context.Background(), "u1", "confirm price change for bulls")
	if !handled || resp != "You have no pending price change." {
		t.Errorf("HandleMessage() = (%q, %v)", resp, handled)
	}

	resp, handled = w.HandleMessage(context.Background(), "u1", "cancel price change")
	if !handled || resp != "You have no pending price change." {
		t.Errorf("HandleMessage() = (%q, %v)", resp, handled)
	}
}

func TestUnrelatedMessageLeavesProposalOpen(t *testing.T) {
	w := New(&fakeStore{})
	w.Propose("u1", proposal())

	if resp, handled := w.HandleMessage(context.Background(), "u1", "what's the bulls price?"); handled {
		t.Fatalf("HandleMessage() handled = true, want fall-through (resp %q)", resp)
	}
	if _, ok := w.Pending("u1"); !ok {
		t.Error("unrelated message cleared the proposal")
	}
}

func TestCommitFailureKeepsProposal(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	w := New(store)
	w.Propose("u1", proposal())

	resp, handled := w.HandleMessage(context.Background(), "u1", "confirm price change for bulls")
	if !handled || !strings.Contains(resp, "Error updating price") {
		t.Errorf("HandleMessage() = (%q, %v)", resp, handled)
	}
	if _, ok := w.Pending("u1"); !ok {
		t.Error("proposal cleared despite commit failure")
	}
}

func TestProposalsAreIsolatedPerUser(t *testing.T) {
	w := New(&fakeStore{old: 50})
	w.Propose("u1", proposal())

	resp, handled := w.HandleMessage(context.Background(), "u2", "confirm price change for bulls")
	if !handled || resp != "You have no pending price change." {
		t.Errorf("HandleMessage() for other user = (%q, %v)", resp, handled)
	}
	if _, ok := w.Pending("u1"); !ok {
		t.Error("u1's proposal affected by u2's message")
	}
}

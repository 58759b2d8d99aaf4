package semantic

// ActionKind is a canonical action recognized by the interpreter.
type ActionKind string

const (
	ActionIncrease ActionKind = "increase"
	ActionDecrease ActionKind = "decrease"
	ActionChange   ActionKind = "change"
	ActionMultiply ActionKind = "multiply"
	ActionDivide   ActionKind = "divide"
	ActionView     ActionKind = "view"
	ActionReport   ActionKind = "report"
	ActionDiscover ActionKind = "discover"
)

// actionGroup pairs a canonical action with its recognized surface phrases.
// Groups are matched in declaration order; ties in similarity go to the
// first-seen candidate.
type actionGroup struct {
	Kind    ActionKind
	Aliases []string
}

var actionGroups = []actionGroup{
	{ActionIncrease, []string{"increase", "markup", "add", "raise", "increment", "boost", "enhance", "up", "grow"}},
	{ActionDecrease, []string{"decrease", "markdown", "subtract", "lower", "reduce", "lessen", "drop", "down", "shrink"}},
	{ActionChange, []string{"change", "modify", "set", "update", "make", "change to", "set to"}},
	{ActionMultiply, []string{"multiply", "times", "multiplied by", "mult", "double", "triple", "quadruple"}},
	{ActionDivide, []string{"divide", "split by", "divided by", "div", "half", "halve"}},
	{ActionView, []string{"view", "show", "display", "see", "check", "tell me", "what is", "what's", "how many", "list", "get"}},
	{ActionReport, []string{"report", "show report", "generate report", "sales report", "view report"}},
	{ActionDiscover, []string{"find events", "search events", "show events", "get events"}},
}

// Canonical event-row field names.
const (
	FieldTicketPrice = "ticket_price"
	FieldNumTickets  = "num_tickets"
	FieldEventName   = "event_name"
	FieldID          = "id"
)

// fieldGroup pairs a canonical field with its recognized surface aliases.
type fieldGroup struct {
	Field   string
	Aliases []string
}

var fieldGroups = []fieldGroup{
	{FieldTicketPrice, []string{
		"ticket price", "price", "prices", "cost", "fee", "fare",
		"pricing", "ticket cost", "charge", "ticket", "tickets",
	}},
	{FieldNumTickets, []string{
		"number of tickets", "ticket count", "available tickets",
		"remaining tickets", "quantity", "amount",
	}},
	{FieldEventName, []string{"name", "event", "show", "game", "games", "concert", "concerts", "title"}},
	{FieldID, []string{"id", "identifier", "number"}},
}

// ProtectedFields lists event-row columns this system must never write to.
// ticket_price is the sole mutable field.
var ProtectedFields = []string{
	"num_tickets", "event_name", "id", "venue", "event_date",
	"section", "row", "region", "performer",
}

// IsProtectedField reports whether field may not be modified.
func IsProtectedField(field string) bool {
	for _, f := range ProtectedFields {
		if field == f {
			return true
		}
	}
	return false
}

// VocabularyPhrases returns every canonical name and alias in declaration
// order, used to warm the embedding cache at startup.
func VocabularyPhrases() []string {
	var phrases []string
	for _, g := range actionGroups {
		phrases = append(phrases, string(g.Kind))
		phrases = append(phrases, g.Aliases...)
	}
	for _, g := range fieldGroups {
		phrases = append(phrases, g.Field)
		phrases = append(phrases, g.Aliases...)
	}
	return phrases
}

package semantic

import "strings"

// fillerWords commonly surround an event name in a query but are not part
// of it ("my Bulls tickets" → "bulls").
var fillerWords = map[string]struct{}{
	"my":      {},
	"tickets": {},
	"concert": {},
	"show":    {},
	"event":   {},
}

// ExtractEventName lowercases the raw event name, discards filler words
// token-wise, and rejoins the remainder. The result is the entity key used
// for row lookup; it may be empty.
func ExtractEventName(raw string) string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(raw)) {
		if _, ok := fillerWords[word]; ok {
			continue
		}
		words = append(words, word)
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

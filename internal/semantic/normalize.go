package semantic

import (
	"context"
	"strings"
)

// Normalizer maps free-text action words and field names onto the closed
// canonical vocabularies. Resolution is two-tier: exact alias lookup first,
// embedding similarity fallback second.
type Normalizer struct {
	matcher *Matcher

	// floor is the minimum similarity for a fallback match to be accepted.
	// Zero accepts the best available match unconditionally.
	floor float32
}

// NewNormalizer creates a Normalizer using the given matcher and similarity
// floor.
func NewNormalizer(matcher *Matcher, floor float64) *Normalizer {
	return &Normalizer{matcher: matcher, floor: float32(floor)}
}

// NormalizeField resolves free text to a canonical field name.
// Exact matches (canonical name or alias) win without any network call;
// otherwise the best similarity match across the entire flattened candidate
// set decides. Returns ok=false when nothing resolves.
func (n *Normalizer) NormalizeField(ctx context.Context, text string) (string, bool) {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return "", false
	}

	for _, g := range fieldGroups {
		if query == g.Field {
			return g.Field, true
		}
		for _, alias := range g.Aliases {
			if query == alias {
				return g.Field, true
			}
		}
	}

	var bestField string
	var maxSimilarity float32 = -1
	found := false

	for _, g := range fieldGroups {
		candidates := append([]string{g.Field}, g.Aliases...)
		_, similarity, ok := n.matcher.FindClosestMatch(ctx, query, candidates)
		if !ok {
			continue
		}
		if similarity > maxSimilarity {
			maxSimilarity = similarity
			bestField = g.Field
			found = true
		}
	}

	if !found || maxSimilarity < n.floor {
		return "", false
	}
	return bestField, true
}

// ResolveAction resolves a free-text action word to its canonical action and
// the alias it matched. Exact alias lookup across all groups wins; otherwise
// each group's best alias competes on similarity and the globally best one
// decides. Returns ok=false when nothing resolves.
func (n *Normalizer) ResolveAction(ctx context.Context, rawAction string) (ActionKind, string, bool) {
	query := strings.ToLower(strings.TrimSpace(rawAction))
	if query == "" {
		return "", "", false
	}

	for _, g := range actionGroups {
		for _, alias := range g.Aliases {
			if query == alias {
				return g.Kind, query, true
			}
		}
	}

	var bestKind ActionKind
	var bestAlias string
	var maxSimilarity float32 = -1
	found := false

	for _, g := range actionGroups {
		alias, similarity, ok := n.matcher.FindClosestMatch(ctx, query, g.Aliases)
		if !ok {
			continue
		}
		if similarity > maxSimilarity {
			maxSimilarity = similarity
			bestKind = g.Kind
			bestAlias = alias
			found = true
		}
	}

	if !found || maxSimilarity < n.floor {
		return "", "", false
	}
	return bestKind, bestAlias, true
}

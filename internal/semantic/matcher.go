package semantic

import (
	"context"
	"math"

	"github.com/hyperengineering/boxoffice/internal/embedding"
)

// Matcher finds the closest candidate to a query by cosine similarity of
// embeddings. Candidate embeddings come through the (cached) embedder, so
// repeat lookups are local.
type Matcher struct {
	embedder embedding.Embedder
}

// NewMatcher creates a Matcher over the given embedder.
func NewMatcher(embedder embedding.Embedder) *Matcher {
	return &Matcher{embedder: embedder}
}

// FindClosestMatch returns the candidate with the greatest cosine similarity
// to query, along with that similarity. Ties resolve to the first-seen
// candidate. Returns ok=false when the query embedding is unavailable or no
// candidate yields a usable embedding; embedding failures are "no opinion",
// never fatal.
func (m *Matcher) FindClosestMatch(ctx context.Context, query string, candidates []string) (string, float32, bool) {
	if len(candidates) == 0 {
		return "", 0, false
	}

	queryVec, err := m.embedder.Embed(ctx, embedding.CacheKey(query))
	if err != nil {
		return "", 0, false
	}

	var bestMatch string
	var maxSimilarity float32 = -1
	found := false

	for _, candidate := range candidates {
		candidateVec, err := m.embedder.Embed(ctx, embedding.CacheKey(candidate))
		if err != nil {
			continue
		}
		similarity := cosineSimilarity(queryVec, candidateVec)
		if similarity > maxSimilarity {
			maxSimilarity = similarity
			bestMatch = candidate
			found = true
		}
	}

	if !found {
		return "", 0, false
	}
	return bestMatch, maxSimilarity, true
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

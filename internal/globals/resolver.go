package globals

import (
	"context"
	"fmt"
	"math"

	"github.com/cloudwego/eino/components/embedding"
)

// DefaultSimilarityThreshold is the cosine similarity above which two
// questions are considered re-asks of each other.
const DefaultSimilarityThreshold = 0.90

// Resolution is the outcome of checking a question against the store
// before it reaches the user.
type Resolution struct {
	// Answered means the question does not need to be asked.
	Answered bool
	// Answer is the recorded value when Answered is true.
	Answer string
	// MatchedKey is the store key that resolved the question. It equals the
	// requested key for direct hits and differs for similarity hits.
	MatchedKey string
}

// Resolver decides whether a clarification question is already answered.
// A direct key lookup comes first; when an embedder is configured, answered
// questions phrased differently are caught by cosine similarity.
type Resolver struct {
	store     Store
	embedder  embedding.Embedder
	threshold float64
}

// NewResolver creates a resolver over the given store. embedder may be nil,
// which disables similarity matching. A threshold <= 0 selects the default.
func NewResolver(store Store, embedder embedding.Embedder, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Resolver{store: store, embedder: embedder, threshold: threshold}
}

// Resolve checks whether asking `question` for `key` is redundant.
func (r *Resolver) Resolve(ctx context.Context, key, question string) (Resolution, error) {
	entry, err := r.store.Get(key)
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup %s: %w", key, err)
	}
	if entry != nil && entry.Answered() {
		return Resolution{Answered: true, Answer: entry.Answer, MatchedKey: key}, nil
	}

	if r.embedder == nil || question == "" {
		return Resolution{}, nil
	}

	vectors, err := r.embedder.EmbedStrings(ctx, []string{question})
	if err != nil {
		// Similarity matching is best-effort; a failed embedding call must
		// not block the clarification round.
		return Resolution{}, nil
	}
	if len(vectors) == 0 {
		return Resolution{}, nil
	}
	target := vectors[0]

	entries, err := r.store.List()
	if err != nil {
		return Resolution{}, fmt.Errorf("list entries: %w", err)
	}
	for _, e := range entries {
		if !e.Answered() || len(e.QuestionEmbedding) == 0 {
			continue
		}
		if CosineSimilarity(target, e.QuestionEmbedding) >= r.threshold {
			return Resolution{Answered: true, Answer: e.Answer, MatchedKey: e.Key}, nil
		}
	}
	return Resolution{}, nil
}

// EmbedQuestion returns the embedding for a question, or nil when no
// embedder is configured or the call fails.
func (r *Resolver) EmbedQuestion(ctx context.Context, question string) []float64 {
	if r.embedder == nil || question == "" {
		return nil
	}
	vectors, err := r.embedder.EmbedStrings(ctx, []string{question})
	if err != nil || len(vectors) == 0 {
		return nil
	}
	return vectors[0]
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths or zero vectors yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

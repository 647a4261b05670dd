package globals

import (
	"context"
	"math"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
)

// fakeEmbedder returns a fixed vector per text.
type fakeEmbedder struct {
	vectors map[string][]float64
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = f.vectors[text]
	}
	return out, nil
}

func TestResolver_DirectHit(t *testing.T) {
	store := newTestStore(t)
	if err := store.Answer("region", "eu-west"); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(store, nil, 0)
	res, err := r.Resolve(context.Background(), "region", "Which region should we deploy to?")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Answered || res.Answer != "eu-west" || res.MatchedKey != "region" {
		t.Errorf("resolution = %+v, want direct hit on region", res)
	}
}

func TestResolver_PendingKeyNotAnswered(t *testing.T) {
	store := newTestStore(t)
	if err := store.Upsert(Entry{Key: "region", Question: "Which region?"}); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(store, nil, 0)
	res, err := r.Resolve(context.Background(), "region", "Which region?")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Answered {
		t.Errorf("pending key must not resolve as answered: %+v", res)
	}
}

func TestResolver_SimilarityHit(t *testing.T) {
	store := newTestStore(t)
	if err := store.Upsert(Entry{
		Key:               "database_engine",
		Question:          "Which database engine should the service use?",
		QuestionEmbedding: []float64{1, 0, 0},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Answer("database_engine", "postgres"); err != nil {
		t.Fatal(err)
	}

	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"What DB do you want?": {0.99, 0.1, 0},
	}}

	r := NewResolver(store, embedder, 0.9)
	res, err := r.Resolve(context.Background(), "db_choice", "What DB do you want?")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Answered || res.Answer != "postgres" || res.MatchedKey != "database_engine" {
		t.Errorf("resolution = %+v, want similarity hit on database_engine", res)
	}
}

func TestResolver_SimilarityBelowThreshold(t *testing.T) {
	store := newTestStore(t)
	if err := store.Upsert(Entry{
		Key:               "database_engine",
		Question:          "Which database engine should the service use?",
		QuestionEmbedding: []float64{1, 0, 0},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Answer("database_engine", "postgres"); err != nil {
		t.Fatal(err)
	}

	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"What color scheme do you prefer?": {0, 1, 0},
	}}

	r := NewResolver(store, embedder, 0.9)
	res, err := r.Resolve(context.Background(), "color_scheme", "What color scheme do you prefer?")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Answered {
		t.Errorf("unrelated question resolved as answered: %+v", res)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"length mismatch", []float64{1, 0}, []float64{1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tc.want)
			}
		})
	}
}

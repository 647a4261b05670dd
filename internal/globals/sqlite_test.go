package globals

import "testing"

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_UpsertAndGet(t *testing.T) {
	store := newTestStore(t)

	err := store.Upsert(Entry{
		Key:         "database_engine",
		Description: "Which database backs the service",
		Question:    "Which database engine should the service use?",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	e, err := store.Get("database_engine")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("expected entry, got nil")
	}
	if e.Status != StatusPending {
		t.Errorf("status = %q, want pending", e.Status)
	}
	if e.Answered() {
		t.Error("pending entry must not report answered")
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	e, err := store.Get("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil for missing key, got %+v", e)
	}
}

func TestSQLiteStore_Answer(t *testing.T) {
	store := newTestStore(t)

	if err := store.Upsert(Entry{Key: "region", Question: "Which region?"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Answer("region", "eu-west"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	e, err := store.Get("region")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !e.Answered() || e.Answer != "eu-west" {
		t.Errorf("entry = %+v, want answered eu-west", e)
	}
}

func TestSQLiteStore_AnswerCreatesEntry(t *testing.T) {
	store := newTestStore(t)

	if err := store.Answer("deadline", "next friday"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	e, err := store.Get("deadline")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || !e.Answered() {
		t.Fatalf("expected answered entry, got %+v", e)
	}
}

func TestSQLiteStore_UpsertKeepsAnswer(t *testing.T) {
	store := newTestStore(t)

	if err := store.Answer("region", "eu-west"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	// A later pending upsert (e.g. a re-asked question) must not clobber
	// the recorded answer.
	if err := store.Upsert(Entry{Key: "region", Question: "Preferred deployment region?"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	e, err := store.Get("region")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !e.Answered() || e.Answer != "eu-west" {
		t.Errorf("answer lost on upsert: %+v", e)
	}
	if e.Question != "Preferred deployment region?" {
		t.Errorf("question not updated: %q", e.Question)
	}
}

func TestSQLiteStore_PendingAndList(t *testing.T) {
	store := newTestStore(t)

	if err := store.Upsert(Entry{Key: "b_key", Question: "B?"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(Entry{Key: "a_key", Question: "A?"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Answer("b_key", "done"); err != nil {
		t.Fatal(err)
	}

	pending, err := store.Pending()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Key != "a_key" {
		t.Errorf("pending = %+v, want [a_key]", pending)
	}

	all, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Key != "a_key" || all[1].Key != "b_key" {
		t.Errorf("list = %+v, want ordered [a_key b_key]", all)
	}
}

func TestSQLiteStore_EmbeddingRoundTrip(t *testing.T) {
	store := newTestStore(t)

	err := store.Upsert(Entry{
		Key:               "region",
		Question:          "Which region?",
		QuestionEmbedding: []float64{0.1, 0.2, 0.3},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	e, err := store.Get("region")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(e.QuestionEmbedding) != 3 || e.QuestionEmbedding[1] != 0.2 {
		t.Errorf("embedding round-trip failed: %v", e.QuestionEmbedding)
	}
}

func TestSQLiteStore_Clear(t *testing.T) {
	store := newTestStore(t)

	if err := store.Answer("region", "eu"); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear("region"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear("region"); err != nil {
		t.Errorf("clearing a missing key should not error: %v", err)
	}
	e, err := store.Get("region")
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Errorf("entry survived clear: %+v", e)
	}
}

package globals

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite for persistence.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed answer store. basePath is the
// directory holding the database file; ":memory:" opens an in-memory store.
func NewSQLiteStore(basePath string) (*SQLiteStore, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, "globals.db")
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create globals directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// initSchema creates the database tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS globals (
		key TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		question TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		question_embedding BLOB,            -- JSON-encoded []float64, nullable
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_globals_status ON globals(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert creates or updates an entry. A pending upsert never overwrites a
// recorded answer.
func (s *SQLiteStore) Upsert(e Entry) error {
	if e.Status == "" {
		e.Status = StatusPending
	}
	embedding, err := marshalEmbedding(e.QuestionEmbedding)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO globals (key, description, question, answer, status, question_embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			description = excluded.description,
			question = excluded.question,
			question_embedding = excluded.question_embedding,
			updated_at = excluded.updated_at,
			answer = CASE WHEN globals.status = 'answered' THEN globals.answer ELSE excluded.answer END,
			status = CASE WHEN globals.status = 'answered' THEN globals.status ELSE excluded.status END
	`, e.Key, e.Description, e.Question, e.Answer, string(e.Status), embedding, now())
	if err != nil {
		return fmt.Errorf("upsert %s: %w", e.Key, err)
	}
	return nil
}

// Get retrieves an entry by key. Returns (nil, nil) when absent.
func (s *SQLiteStore) Get(key string) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT key, description, question, answer, status, question_embedding, updated_at
		FROM globals WHERE key = ?`, key)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return e, nil
}

// List returns all entries ordered by key.
func (s *SQLiteStore) List() ([]Entry, error) {
	return s.query(`
		SELECT key, description, question, answer, status, question_embedding, updated_at
		FROM globals ORDER BY key`)
}

// Pending returns all entries without a recorded answer, ordered by key.
func (s *SQLiteStore) Pending() ([]Entry, error) {
	return s.query(`
		SELECT key, description, question, answer, status, question_embedding, updated_at
		FROM globals WHERE status = 'pending' ORDER BY key`)
}

// Answer records a user answer under the key and marks it answered.
func (s *SQLiteStore) Answer(key, answer string) error {
	_, err := s.db.Exec(`
		INSERT INTO globals (key, answer, status, updated_at)
		VALUES (?, ?, 'answered', ?)
		ON CONFLICT(key) DO UPDATE SET
			answer = excluded.answer,
			status = 'answered',
			updated_at = excluded.updated_at
	`, key, answer, now())
	if err != nil {
		return fmt.Errorf("answer %s: %w", key, err)
	}
	return nil
}

// Clear removes an entry.
func (s *SQLiteStore) Clear(key string) error {
	if _, err := s.db.Exec(`DELETE FROM globals WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(q string) ([]Entry, error) {
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var status, updatedAt string
	var embedding []byte
	if err := row.Scan(&e.Key, &e.Description, &e.Question, &e.Answer, &status, &embedding, &updatedAt); err != nil {
		return nil, err
	}
	e.Status = Status(status)
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		e.UpdatedAt = ts
	}
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &e.QuestionEmbedding); err != nil {
			return nil, fmt.Errorf("decode embedding for %s: %w", e.Key, err)
		}
	}
	return &e, nil
}

func marshalEmbedding(v []float64) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}
	return data, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

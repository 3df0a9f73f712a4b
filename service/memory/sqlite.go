package memory

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/itinera/itinera/model/trip"
)

// SQLiteStore persists facts in a SQLite database so recall survives
// process restarts.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	store := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_facts (
		id         TEXT PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		session_id TEXT NOT NULL,
		status     TEXT NOT NULL,
		summary    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (session_id, status)
	);
	CREATE INDEX IF NOT EXISTS idx_session_facts_owner ON session_facts(owner_id);
	CREATE INDEX IF NOT EXISTS idx_session_facts_created ON session_facts(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) AddSessionToMemory(ctx context.Context, session *trip.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_facts (id, owner_id, session_id, status, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, status) DO NOTHING`,
		s.newID(),
		session.OwnerID,
		session.ID,
		string(session.State.Status),
		Summarize(session),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("add session %s to memory: %w", session.ID, err)
	}
	return nil
}

func (s *SQLiteStore) SearchMemory(ctx context.Context, ownerID, query string) ([]*Fact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, session_id, status, summary, created_at
		FROM session_facts
		WHERE (? = '' OR owner_id = ?)
		ORDER BY created_at DESC`,
		ownerID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("search memory: %w", err)
	}
	defer rows.Close()

	var result []*Fact
	for rows.Next() {
		var fact Fact
		var createdAt string
		if err := rows.Scan(&fact.ID, &fact.OwnerID, &fact.SessionID, &fact.Status, &fact.Summary, &createdAt); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		fact.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if matchesQuery(fact.Summary, query) {
			result = append(result, &fact)
		}
	}
	return result, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package sqlite mirrors the in-memory instance store into an embedded
// sqlite database as per-class JSON snapshot buckets.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"orthoinfer/internal/infra/persistence/memory"
	"orthoinfer/pkg/domain"
)

const defaultPath = "./orthoinfer.db"

// Store wraps memory.Store with a durable sqlite snapshot. Reads and writes
// hit the in-memory store; Flush persists the working set.
type Store struct {
	mem  *memory.Store
	mu   sync.Mutex
	db   *sql.DB
	path string
}

var _ domain.Store = (*Store)(nil)

func (s *Store) Fetch(id int64) (*domain.Instance, bool) { return s.mem.Fetch(id) }

func (s *Store) ListByClass(class domain.Class) []*domain.Instance {
	return s.mem.ListByClass(class)
}

func (s *Store) FetchByAttribute(class domain.Class, attr, value string) []*domain.Instance {
	return s.mem.FetchByAttribute(class, attr, value)
}

func (s *Store) StructurallyIdentical(in *domain.Instance) []*domain.Instance {
	return s.mem.StructurallyIdentical(in)
}

func (s *Store) Store(in *domain.Instance) *domain.Instance { return s.mem.Store(in) }

func (s *Store) Update(in *domain.Instance) { s.mem.Update(in) }

func (s *Store) Referrers(id int64, attr string) []*domain.Instance {
	return s.mem.Referrers(id, attr)
}

// Len reports the number of instances in the working set.
func (s *Store) Len() int { return s.mem.Len() }

// Snapshot exposes the working set as per-class record buckets.
func (s *Store) Snapshot() map[string][]memory.Record { return s.mem.Snapshot() }

// Restore replaces the working set from record buckets.
func (s *Store) Restore(buckets map[string][]memory.Record) error { return s.mem.Restore(buckets) }

// Open opens (creating if needed) the sqlite file and loads any existing
// snapshot into memory. An empty path uses the default location.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (bucket TEXT PRIMARY KEY, payload BLOB NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	s := &Store{mem: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

// Flush writes the current working set to sqlite, replacing the previous
// snapshot.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buckets := s.Snapshot()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM state`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear state: %w", err)
	}
	for bucket, recs := range buckets {
		payload, err := json.Marshal(recs)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal bucket %s: %w", bucket, err)
		}
		if _, err := tx.Exec(`INSERT INTO state (bucket, payload) VALUES (?, ?)
			ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`, bucket, payload); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write bucket %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// Close closes the database handle without flushing.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	buckets := map[string][]memory.Record{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		var recs []memory.Record
		if err := json.Unmarshal(payload, &recs); err != nil {
			return fmt.Errorf("decode bucket %s: %w", bucket, err)
		}
		buckets[bucket] = recs
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(buckets) == 0 {
		return nil
	}
	return s.Restore(buckets)
}

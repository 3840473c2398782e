package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// created_at and ttl_ns are unix nanoseconds so lazy expiry keeps full
// precision.
const createEntriesTable = `
CREATE TABLE IF NOT EXISTS responses (
	fingerprint TEXT PRIMARY KEY,
	response    BLOB NOT NULL,
	created_at  INTEGER NOT NULL,
	ttl_ns      INTEGER NOT NULL
);
`

// SQLite is a disk-backed cache so responses survive server restarts.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the cache database at path.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	if _, err := db.Exec(createEntriesTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating cache db: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get returns the cached response, treating expired rows as absent.
func (c *SQLite) Get(ctx context.Context, key string) ([]byte, bool) {
	var (
		response  []byte
		createdAt int64
		ttlNS     int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT response, created_at, ttl_ns FROM responses WHERE fingerprint = ?`,
		key,
	).Scan(&response, &createdAt, &ttlNS)
	if err != nil {
		return nil, false
	}

	if time.Since(time.Unix(0, createdAt)) > time.Duration(ttlNS) {
		return nil, false
	}
	return response, true
}

// Set upserts the response. Writes are idempotent per fingerprint.
func (c *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (fingerprint, response, created_at, ttl_ns)
		 VALUES (?, ?, ?, ?)`,
		key, value, time.Now().UnixNano(), int64(ttl),
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Purge deletes rows whose TTL elapsed. Expiry is otherwise lazy, so this
// only reclaims disk space; correctness never depends on it.
func (c *SQLite) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM responses WHERE ? - created_at > ttl_ns`,
		time.Now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return res.RowsAffected()
}

func (c *SQLite) Close() error { return c.db.Close() }

var _ Cache = (*SQLite)(nil)

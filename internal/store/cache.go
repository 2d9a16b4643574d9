package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Cache kinds.
const (
	CacheClassification = "classification"
	CacheExtraction     = "extraction"
	CacheAnalysis       = "analysis"
)

// CacheRead returns the cached payload for (kind, key), or false on a miss.
// A miss is the must-compute path, never an error.
func (s *Store) CacheRead(ctx context.Context, kind, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM cache WHERE kind=? AND key=?`, kind, key)
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read cache %s/%s: %w", kind, key, err)
	}
	return data, true, nil
}

// CacheWrite upserts a cache entry. Writes are idempotent and last-write-wins;
// concurrent writers racing on the same key is acceptable since the payload
// is derived from the key's content.
func (s *Store) CacheWrite(ctx context.Context, kind, key, data string) error {
	updatedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO cache(kind, key, data, updated_at) VALUES(?, ?, ?, ?)
		ON CONFLICT(kind, key) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		kind, key, data, updatedAt); err != nil {
		return fmt.Errorf("write cache %s/%s: %w", kind, key, err)
	}
	return nil
}

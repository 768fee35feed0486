package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/platform/obs"
	"time"
)

// SQLiteSolutionCache keeps two-phase results in the embedded store's
// solution_cache table. stored_at holds unix seconds.
type SQLiteSolutionCache struct {
	DB  *sql.DB
	TTL time.Duration
	now func() time.Time
}

func NewSQLiteSolutionCache(db *sql.DB, ttl time.Duration) *SQLiteSolutionCache {
	return &SQLiteSolutionCache{DB: db, TTL: ttl, now: time.Now}
}

// Get returns the cached result for key. Rows older than TTL count as misses.
func (c *SQLiteSolutionCache) Get(ctx context.Context, key string) (_ *domain.OptimizationResult, _ bool, err error) {
	defer obs.Time(ctx, "solution.sqlitecache.Get")(&err)

	if c.DB == nil {
		return nil, false, errors.New("solution cache: db is nil")
	}
	if key == "" {
		return nil, false, errors.New("get solution cache: key must not be empty")
	}

	// A zero cutoff keeps every row when no TTL is set.
	var cutoff int64
	if c.TTL > 0 {
		cutoff = c.clock().Add(-c.TTL).Unix()
	}

	var raw []byte
	err = c.DB.QueryRowContext(ctx, `
	SELECT result
	FROM solution_cache
	WHERE cache_key = ?
		AND stored_at >= ?;
	`, key, cutoff).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get solution cache: query solution_cache table: %w", err)
	}

	var res domain.OptimizationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("get solution cache %s: decode: %w", key, err)
	}
	return &res, true, nil
}

func (c *SQLiteSolutionCache) Put(ctx context.Context, key string, res *domain.OptimizationResult) (err error) {
	defer obs.Time(ctx, "solution.sqlitecache.Put")(&err)

	if c.DB == nil {
		return errors.New("solution cache: db is nil")
	}
	if key == "" || res == nil {
		return errors.New("put solution cache: key and result are required")
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("put solution cache %s: encode: %w", key, err)
	}

	_, err = c.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO solution_cache (cache_key, facility, result, stored_at)
	VALUES (?, ?, ?, ?);
	`, key, res.Facility, string(raw), c.clock().Unix())
	if err != nil {
		return fmt.Errorf("put solution cache %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteSolutionCache) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

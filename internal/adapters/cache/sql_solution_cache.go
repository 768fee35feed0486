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

// SQLSolutionCache keeps two-phase results in the solution_cache table. It
// serves deployments that run Postgres without Redis.
type SQLSolutionCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLSolutionCache(db *sql.DB, ttl time.Duration) *SQLSolutionCache {
	return &SQLSolutionCache{DB: db, TTL: ttl}
}

// Get returns the cached result for key. Rows older than TTL count as misses
// and are left for the next Put to overwrite.
func (c *SQLSolutionCache) Get(ctx context.Context, key string) (_ *domain.OptimizationResult, _ bool, err error) {
	defer obs.Time(ctx, "solution.sqlcache.Get")(&err)

	if c.DB == nil {
		return nil, false, errors.New("solution cache: db is nil")
	}
	if key == "" {
		return nil, false, errors.New("get solution cache: key must not be empty")
	}

	q := `
	SELECT result
	FROM solution_cache
	WHERE cache_key = $1
		AND ($2::bigint = 0 OR stored_at > now() - make_interval(secs => $2::bigint));
	`

	var raw []byte
	err = c.DB.QueryRowContext(ctx, q, key, int64(c.TTL/time.Second)).Scan(&raw)
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

func (c *SQLSolutionCache) Put(ctx context.Context, key string, res *domain.OptimizationResult) (err error) {
	defer obs.Time(ctx, "solution.sqlcache.Put")(&err)

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
	INSERT INTO solution_cache (cache_key, facility, result, stored_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (cache_key) DO UPDATE
	SET facility = EXCLUDED.facility,
		result = EXCLUDED.result,
		stored_at = EXCLUDED.stored_at;
	`, key, res.Facility, raw)
	if err != nil {
		return fmt.Errorf("put solution cache %s: %w", key, err)
	}
	return nil
}

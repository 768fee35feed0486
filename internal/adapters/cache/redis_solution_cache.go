package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/platform/obs"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sco:result:"

// RedisSolutionCache stores two-phase results as JSON under a dataset
// fingerprint. A zero TTL keeps entries until evicted.
type RedisSolutionCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSolutionCache(client *redis.Client, ttl time.Duration) *RedisSolutionCache {
	return &RedisSolutionCache{Client: client, TTL: ttl}
}

func (c *RedisSolutionCache) Get(ctx context.Context, key string) (_ *domain.OptimizationResult, _ bool, err error) {
	defer obs.Time(ctx, "solution.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("solution cache: client is nil")
	}
	if key == "" {
		return nil, false, errors.New("get solution cache: key must not be empty")
	}

	raw, err := c.Client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get solution cache %s: %w", key, err)
	}

	var res domain.OptimizationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("get solution cache %s: decode: %w", key, err)
	}
	return &res, true, nil
}

func (c *RedisSolutionCache) Put(ctx context.Context, key string, res *domain.OptimizationResult) (err error) {
	defer obs.Time(ctx, "solution.cache.Put")(&err)

	if c.Client == nil {
		return errors.New("solution cache: client is nil")
	}
	if key == "" || res == nil {
		return errors.New("put solution cache: key and result are required")
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("put solution cache %s: encode: %w", key, err)
	}
	if err := c.Client.Set(ctx, keyPrefix+key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put solution cache %s: %w", key, err)
	}
	return nil
}

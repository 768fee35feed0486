package ports

import (
	"context"
	"supply-chain-optimizer/internal/domain"
)

// Optional cache of two-phase results keyed by a dataset fingerprint.
type SolutionCache interface {
	// Return the cached result and whether it was found.
	Get(ctx context.Context, key string) (*domain.OptimizationResult, bool, error)
	Put(ctx context.Context, key string, res *domain.OptimizationResult) error
}

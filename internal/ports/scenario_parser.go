package ports

import (
	"context"
	"supply-chain-optimizer/internal/domain"
)

// Contract for turning a free-text what-if question into typed modifications.
// The engine only ever consumes the structured result.
type ScenarioParser interface {
	Parse(ctx context.Context, question string, sc domain.ScenarioContext) (*domain.ParsedScenario, error)
}

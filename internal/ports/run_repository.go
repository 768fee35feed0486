package ports

import (
	"context"
	"supply-chain-optimizer/internal/domain"
)

// Port: persistence of optimization run summaries.
type RunRepository interface {
	SaveRun(ctx context.Context, rec domain.RunRecord) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

package ports

import (
	"context"
	"supply-chain-optimizer/internal/domain"
)

// Port: a boundary for retrieving the validated optimization dataset.
type DatasetRepository interface {
	LoadDataset(ctx context.Context) (*domain.Dataset, error)
}

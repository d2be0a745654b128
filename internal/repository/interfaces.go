package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/forewarden/internal/models"
)

// WindowResultRepository defines the interface for window result data access
type WindowResultRepository interface {
	Save(ctx context.Context, result *models.WindowResult) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.WindowResult, error)
	GetLatest(ctx context.Context, limit int) ([]*models.WindowResult, error)
	GetBySymbol(ctx context.Context, symbol string, start, end time.Time) ([]*models.WindowResult, error)
}

// DivergenceRepository defines the interface for divergence record data access
type DivergenceRepository interface {
	Insert(ctx context.Context, record *models.DivergenceRecord) error
	InsertBatch(ctx context.Context, records []*models.DivergenceRecord) error
	GetBySymbol(ctx context.Context, symbol string) ([]*models.DivergenceRecord, error)
	GetOverfitting(ctx context.Context, symbol string) ([]*models.DivergenceRecord, error)
}

// WeightHistoryRepository defines the interface for ensemble weight history access
type WeightHistoryRepository interface {
	Append(ctx context.Context, snapshot *models.WeightSnapshot) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.WeightSnapshot, error)
	GetLatest(ctx context.Context, runID uuid.UUID) (*models.WeightSnapshot, error)
}

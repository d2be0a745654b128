package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/forewarden/internal/database"
	"github.com/yourusername/forewarden/internal/models"
)

const errScanDivergenceRecord = "failed to scan divergence record: %w"

const divergenceColumns = `
	id, symbol, symbol_id, horizon, window_id,
	val_metric, test_metric, divergence, is_overfitting,
	n_val_samples, n_test_samples, model_count, timestamp`

// PostgresDivergenceRepository implements DivergenceRepository for PostgreSQL
type PostgresDivergenceRepository struct {
	db *database.DB
}

// NewPostgresDivergenceRepository creates a new divergence repository
func NewPostgresDivergenceRepository(db *database.DB) DivergenceRepository {
	return &PostgresDivergenceRepository{db: db}
}

// Insert inserts a single divergence record
func (r *PostgresDivergenceRepository) Insert(ctx context.Context, record *models.DivergenceRecord) error {
	query := `
		INSERT INTO divergence_records (
			id, symbol, symbol_id, horizon, window_id,
			val_metric, test_metric, divergence, is_overfitting,
			n_val_samples, n_test_samples, model_count, timestamp
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.Symbol, record.SymbolID, record.Horizon, record.WindowID,
		record.ValMetric, record.TestMetric, record.Divergence, record.IsOverfitting,
		record.NValSamples, record.NTestSamples, record.ModelCount, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert divergence record: %w", err)
	}
	return nil
}

// InsertBatch inserts multiple divergence records in one transaction
func (r *PostgresDivergenceRepository) InsertBatch(ctx context.Context, records []*models.DivergenceRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, record := range records {
			if err := r.Insert(txCtx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBySymbol retrieves all divergence records for a symbol ordered by window ID
func (r *PostgresDivergenceRepository) GetBySymbol(ctx context.Context, symbol string) ([]*models.DivergenceRecord, error) {
	query := `SELECT ` + divergenceColumns + ` FROM divergence_records WHERE symbol = $1 ORDER BY window_id`
	rows, err := r.db.GetPool().Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query divergence records: %w", err)
	}
	defer rows.Close()

	return scanDivergenceRecords(rows)
}

// GetOverfitting retrieves records flagged as overfitting for a symbol
func (r *PostgresDivergenceRepository) GetOverfitting(ctx context.Context, symbol string) ([]*models.DivergenceRecord, error) {
	query := `SELECT ` + divergenceColumns + ` FROM divergence_records
		WHERE symbol = $1 AND is_overfitting = true ORDER BY window_id`
	rows, err := r.db.GetPool().Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query overfitting records: %w", err)
	}
	defer rows.Close()

	return scanDivergenceRecords(rows)
}

func scanDivergenceRecords(rows pgx.Rows) ([]*models.DivergenceRecord, error) {
	var records []*models.DivergenceRecord
	for rows.Next() {
		record := &models.DivergenceRecord{}
		if err := rows.Scan(
			&record.ID, &record.Symbol, &record.SymbolID, &record.Horizon, &record.WindowID,
			&record.ValMetric, &record.TestMetric, &record.Divergence, &record.IsOverfitting,
			&record.NValSamples, &record.NTestSamples, &record.ModelCount, &record.Timestamp,
		); err != nil {
			return nil, fmt.Errorf(errScanDivergenceRecord, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/forewarden/internal/database"
	"github.com/yourusername/forewarden/internal/models"
)

const errScanWindowResult = "failed to scan window result: %w"

const windowResultColumns = `
	id, run_id, window_id, symbol, horizon,
	train_start, train_end, val_start, val_end, test_start, test_end,
	status, skip_reason, val_metric, test_metric, divergence,
	n_train_samples, n_val_samples, n_test_samples,
	best_params, models_used, created_at`

// PostgresWindowResultRepository implements WindowResultRepository for PostgreSQL
type PostgresWindowResultRepository struct {
	db *database.DB
}

// NewPostgresWindowResultRepository creates a new window result repository
func NewPostgresWindowResultRepository(db *database.DB) WindowResultRepository {
	return &PostgresWindowResultRepository{db: db}
}

// Save inserts a window result
func (r *PostgresWindowResultRepository) Save(ctx context.Context, result *models.WindowResult) error {
	if err := result.EncodeJSONColumns(); err != nil {
		return fmt.Errorf("failed to encode window result JSON columns: %w", err)
	}

	query := `
		INSERT INTO window_results (
			id, run_id, window_id, symbol, horizon,
			train_start, train_end, val_start, val_end, test_start, test_end,
			status, skip_reason, val_metric, test_metric, divergence,
			n_train_samples, n_val_samples, n_test_samples,
			best_params, models_used, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		result.ID, result.RunID, result.WindowID, result.Symbol, result.Horizon,
		result.Window.TrainStart, result.Window.TrainEnd, result.Window.ValStart, result.Window.ValEnd,
		result.Window.TestStart, result.Window.TestEnd,
		result.Status, result.SkipReason, result.ValMetric, result.TestMetric, result.Divergence,
		result.NTrainSamples, result.NValSamples, result.NTestSamples,
		result.BestParamsJSON, result.ModelsUsedJSON, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save window result: %w", err)
	}
	return nil
}

// GetByRunID retrieves all window results for a run ordered by window ID
func (r *PostgresWindowResultRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.WindowResult, error) {
	query := `SELECT ` + windowResultColumns + ` FROM window_results WHERE run_id = $1 ORDER BY window_id`
	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query window results: %w", err)
	}
	defer rows.Close()

	return scanWindowResults(rows)
}

// GetLatest retrieves the most recent window results
func (r *PostgresWindowResultRepository) GetLatest(ctx context.Context, limit int) ([]*models.WindowResult, error) {
	query := `SELECT ` + windowResultColumns + ` FROM window_results ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest window results: %w", err)
	}
	defer rows.Close()

	return scanWindowResults(rows)
}

// GetBySymbol retrieves window results for a symbol within a creation date range
func (r *PostgresWindowResultRepository) GetBySymbol(ctx context.Context, symbol string, start, end time.Time) ([]*models.WindowResult, error) {
	query := `SELECT ` + windowResultColumns + `
		FROM window_results WHERE symbol = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC`
	rows, err := r.db.GetPool().Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query window results by symbol: %w", err)
	}
	defer rows.Close()

	return scanWindowResults(rows)
}

func scanWindowResults(rows pgx.Rows) ([]*models.WindowResult, error) {
	var results []*models.WindowResult
	for rows.Next() {
		result := &models.WindowResult{}
		if err := rows.Scan(
			&result.ID, &result.RunID, &result.WindowID, &result.Symbol, &result.Horizon,
			&result.Window.TrainStart, &result.Window.TrainEnd, &result.Window.ValStart, &result.Window.ValEnd,
			&result.Window.TestStart, &result.Window.TestEnd,
			&result.Status, &result.SkipReason, &result.ValMetric, &result.TestMetric, &result.Divergence,
			&result.NTrainSamples, &result.NValSamples, &result.NTestSamples,
			&result.BestParamsJSON, &result.ModelsUsedJSON, &result.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanWindowResult, err)
		}
		result.Window.WindowID = result.WindowID
		if err := result.DecodeJSONColumns(); err != nil {
			return nil, fmt.Errorf(errScanWindowResult, err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

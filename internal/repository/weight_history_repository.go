package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/forewarden/internal/database"
	"github.com/yourusername/forewarden/internal/models"
)

const errScanWeightSnapshot = "failed to scan weight snapshot: %w"

// PostgresWeightHistoryRepository implements WeightHistoryRepository for PostgreSQL
type PostgresWeightHistoryRepository struct {
	db *database.DB
}

// NewPostgresWeightHistoryRepository creates a new weight history repository
func NewPostgresWeightHistoryRepository(db *database.DB) WeightHistoryRepository {
	return &PostgresWeightHistoryRepository{db: db}
}

// Append inserts a weight snapshot. History is append-only.
func (r *PostgresWeightHistoryRepository) Append(ctx context.Context, snapshot *models.WeightSnapshot) error {
	if err := snapshot.EncodeJSONColumns(); err != nil {
		return fmt.Errorf("failed to encode weight snapshot: %w", err)
	}

	query := `
		INSERT INTO weight_history (id, run_id, method, weights, sequence, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		snapshot.ID, snapshot.RunID, snapshot.Method, snapshot.WeightsJSON, snapshot.Order, snapshot.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append weight snapshot: %w", err)
	}
	return nil
}

// GetByRunID retrieves the full weight history for a run in sequence order
func (r *PostgresWeightHistoryRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.WeightSnapshot, error) {
	query := `
		SELECT id, run_id, method, weights, sequence, timestamp
		FROM weight_history WHERE run_id = $1 ORDER BY sequence
	`
	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weight history: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.WeightSnapshot
	for rows.Next() {
		snapshot := &models.WeightSnapshot{}
		if err := rows.Scan(
			&snapshot.ID, &snapshot.RunID, &snapshot.Method, &snapshot.WeightsJSON, &snapshot.Order, &snapshot.Timestamp,
		); err != nil {
			return nil, fmt.Errorf(errScanWeightSnapshot, err)
		}
		if err := snapshot.DecodeJSONColumns(); err != nil {
			return nil, fmt.Errorf(errScanWeightSnapshot, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// GetLatest retrieves the most recent weight snapshot for a run
func (r *PostgresWeightHistoryRepository) GetLatest(ctx context.Context, runID uuid.UUID) (*models.WeightSnapshot, error) {
	query := `
		SELECT id, run_id, method, weights, sequence, timestamp
		FROM weight_history WHERE run_id = $1 ORDER BY sequence DESC LIMIT 1
	`
	snapshot := &models.WeightSnapshot{}
	err := r.db.GetPool().QueryRow(ctx, query, runID).Scan(
		&snapshot.ID, &snapshot.RunID, &snapshot.Method, &snapshot.WeightsJSON, &snapshot.Order, &snapshot.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query latest weight snapshot: %w", err)
	}
	if err := snapshot.DecodeJSONColumns(); err != nil {
		return nil, fmt.Errorf(errScanWeightSnapshot, err)
	}
	return snapshot, nil
}

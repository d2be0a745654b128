package database

import (
	"context"
	"fmt"

	"github.com/yourusername/forewarden/internal/config"
)

// Schema statements applied on startup. Idempotent so repeated runs are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS window_results (
		id UUID PRIMARY KEY,
		run_id UUID NOT NULL,
		window_id INT NOT NULL,
		symbol TEXT NOT NULL,
		horizon INT NOT NULL,
		train_start TIMESTAMPTZ NOT NULL,
		train_end TIMESTAMPTZ NOT NULL,
		val_start TIMESTAMPTZ NOT NULL,
		val_end TIMESTAMPTZ NOT NULL,
		test_start TIMESTAMPTZ NOT NULL,
		test_end TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		skip_reason TEXT,
		val_metric DOUBLE PRECISION,
		test_metric DOUBLE PRECISION,
		divergence DOUBLE PRECISION,
		n_train_samples INT NOT NULL DEFAULT 0,
		n_val_samples INT NOT NULL DEFAULT 0,
		n_test_samples INT NOT NULL DEFAULT 0,
		best_params JSONB,
		models_used JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_window_results_run ON window_results (run_id, window_id)`,
	`CREATE TABLE IF NOT EXISTS divergence_records (
		id UUID PRIMARY KEY,
		symbol TEXT NOT NULL,
		symbol_id INT NOT NULL DEFAULT 0,
		horizon INT NOT NULL,
		window_id INT NOT NULL,
		val_metric DOUBLE PRECISION NOT NULL,
		test_metric DOUBLE PRECISION NOT NULL,
		divergence DOUBLE PRECISION NOT NULL,
		is_overfitting BOOLEAN NOT NULL,
		n_val_samples INT NOT NULL,
		n_test_samples INT NOT NULL,
		model_count INT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_divergence_symbol ON divergence_records (symbol, window_id)`,
	`CREATE TABLE IF NOT EXISTS weight_history (
		id UUID PRIMARY KEY,
		run_id UUID NOT NULL,
		method TEXT NOT NULL,
		weights JSONB NOT NULL,
		sequence INT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weight_history_run ON weight_history (run_id, sequence)`,
}

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	// Create connection pool
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// Apply schema statements
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return db, nil
}

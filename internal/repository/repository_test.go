package repository

import (
	"testing"
)

const skipIntegrationMsg = "Integration test - requires database setup"

// TestNewRepositoriesNilDB tests that a nil database is rejected
func TestNewRepositoriesNilDB(t *testing.T) {
	repos, err := NewRepositories(nil)
	if err == nil {
		t.Fatal("expected error for nil database")
	}
	if repos != nil {
		t.Error("expected nil repositories on error")
	}
}

// TestWindowResultRepositorySave tests window result persistence
func TestWindowResultRepositorySave(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer database.TeardownTestDB(t, db)

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// result := &models.WindowResult{
	// 	ID:       uuid.New(),
	// 	RunID:    uuid.New(),
	// 	WindowID: 0,
	// 	Symbol:   "BTCUSD",
	// 	Horizon:  5,
	// 	Status:   models.WindowStatusCompleted,
	// }

	// ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	// defer cancel()

	// if err := repos.WindowResult.Save(ctx, result); err != nil {
	// 	t.Fatalf("failed to save window result: %v", err)
	// }

	// retrieved, err := repos.WindowResult.GetByRunID(ctx, result.RunID)
	// if err != nil {
	// 	t.Fatalf("failed to retrieve window results: %v", err)
	// }

	// if len(retrieved) != 1 || retrieved[0].ID != result.ID {
	// 	t.Errorf("expected one result with ID %v", result.ID)
	// }
	t.Skip(skipIntegrationMsg)
}

// TestDivergenceRepositoryBatch tests batch divergence insertion
func TestDivergenceRepositoryBatch(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer database.TeardownTestDB(t, db)

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// records := []*models.DivergenceRecord{
	// 	{ID: uuid.New(), Symbol: "BTCUSD", Horizon: 5, WindowID: 0, ValMetric: 0.02, TestMetric: 0.021, Divergence: 0.05, Timestamp: time.Now()},
	// 	{ID: uuid.New(), Symbol: "BTCUSD", Horizon: 5, WindowID: 1, ValMetric: 0.02, TestMetric: 0.03, Divergence: 0.5, IsOverfitting: true, Timestamp: time.Now()},
	// }

	// ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	// defer cancel()

	// if err := repos.Divergence.InsertBatch(ctx, records); err != nil {
	// 	t.Fatalf("failed to insert divergence batch: %v", err)
	// }
	t.Skip(skipIntegrationMsg)
}

// TestWeightHistoryAppendOnly tests weight history sequencing
func TestWeightHistoryAppendOnly(t *testing.T) {
	// db := database.SetupTestDB(t)
	// defer database.TeardownTestDB(t, db)

	// repos, err := NewRepositories(db)
	// if err != nil {
	// 	t.Fatalf("failed to create repositories: %v", err)
	// }

	// runID := uuid.New()
	// for i := 0; i < 3; i++ {
	// 	snapshot := &models.WeightSnapshot{
	// 		ID:        uuid.New(),
	// 		RunID:     runID,
	// 		Method:    "inverse_error",
	// 		Weights:   map[string]float64{"arima": 0.5, "prophet": 0.5},
	// 		Order:     i,
	// 		Timestamp: time.Now(),
	// 	}
	// 	if err := repos.WeightHistory.Append(ctx, snapshot); err != nil {
	// 		t.Fatalf("failed to append snapshot: %v", err)
	// 	}
	// }

	// latest, err := repos.WeightHistory.GetLatest(ctx, runID)
	// if err != nil {
	// 	t.Fatalf("failed to get latest snapshot: %v", err)
	// }
	// if latest.Order != 2 {
	// 	t.Errorf("expected latest sequence 2, got %d", latest.Order)
	// }
	t.Skip(skipIntegrationMsg)
}

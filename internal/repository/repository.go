package repository

import (
	"fmt"

	"github.com/yourusername/forewarden/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	WindowResult  WindowResultRepository
	Divergence    DivergenceRepository
	WeightHistory WeightHistoryRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		WindowResult:  NewPostgresWindowResultRepository(db),
		Divergence:    NewPostgresDivergenceRepository(db),
		WeightHistory: NewPostgresWeightHistoryRepository(db),
	}, nil
}

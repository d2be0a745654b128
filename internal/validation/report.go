package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/forewarden/internal/models"
)

// RunReport is the full outcome of one walk-forward validation run.
type RunReport struct {
	RunID            uuid.UUID                 `json:"run_id"`
	Symbol           string                    `json:"symbol"`
	Horizon          int                       `json:"horizon"`
	State            string                    `json:"state"`
	StartedAt        time.Time                 `json:"started_at"`
	Duration         time.Duration             `json:"duration_ns"`
	TotalWindows     int                       `json:"total_windows"`
	CompletedWindows int                       `json:"completed_windows"`
	SkippedWindows   int                       `json:"skipped_windows"`
	Windows          []models.WindowResult     `json:"windows"`
	Summary          models.DivergenceSummary  `json:"summary"`
	Weights          map[string]float64        `json:"weights"`
	WeightHistory    []models.WeightSnapshot   `json:"weight_history"`
	Significance     models.SignificanceResult `json:"significance"`
	Promote          bool                      `json:"promote"`
}

// WriteText renders a human-readable summary.
func (r *RunReport) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Validation Run %s\n", r.RunID)
	fmt.Fprintf(w, "=====================================\n")
	fmt.Fprintf(w, "Symbol:             %s\n", r.Symbol)
	fmt.Fprintf(w, "Horizon:            %d days\n", r.Horizon)
	fmt.Fprintf(w, "State:              %s\n", r.State)
	fmt.Fprintf(w, "Duration:           %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Windows:            %d total, %d completed, %d skipped\n",
		r.TotalWindows, r.CompletedWindows, r.SkippedWindows)
	fmt.Fprintf(w, "\nDivergence\n")
	fmt.Fprintf(w, "  Mean:             %.4f\n", r.Summary.MeanDivergence)
	fmt.Fprintf(w, "  Min/Max:          %.4f / %.4f\n", r.Summary.MinDivergence, r.Summary.MaxDivergence)
	fmt.Fprintf(w, "  Overfitting:      %d windows (%.1f%%, threshold %.2f)\n",
		r.Summary.OverfittingWindows, r.Summary.PctOverfitting, r.Summary.DivergenceThreshold)

	if len(r.Weights) > 0 {
		fmt.Fprintf(w, "\nEnsemble Weights\n")
		names := make([]string, 0, len(r.Weights))
		for name := range r.Weights {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-16s  %.4f\n", name, r.Weights[name])
		}
	}

	fmt.Fprintf(w, "\nSignificance (vs naive baseline)\n")
	if r.Significance.SampleSufficient {
		fmt.Fprintf(w, "  DM statistic:     %.4f\n", r.Significance.Statistic)
		fmt.Fprintf(w, "  p-value:          %.4f\n", r.Significance.PValue)
		fmt.Fprintf(w, "  Effect size:      %.6f\n", r.Significance.EffectSize)
	}
	fmt.Fprintf(w, "  Sample size:      %d\n", r.Significance.SampleSize)
	fmt.Fprintf(w, "  %s\n", r.Significance.Interpretation)

	if r.Promote {
		fmt.Fprintf(w, "\nDecision: PROMOTE (significantly beats baseline)\n")
	} else {
		fmt.Fprintf(w, "\nDecision: HOLD\n")
	}
}

// Export writes the report as indented JSON under dir, named by run ID.
// Returns the written path.
func (r *RunReport) Export(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("validation_%s.json", r.RunID))
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

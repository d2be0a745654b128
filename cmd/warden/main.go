// Package main provides the warden CLI for operating the validation engine.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/forewarden/internal/config"
	"github.com/yourusername/forewarden/internal/database"
	"github.com/yourusername/forewarden/internal/ensemble"
	"github.com/yourusername/forewarden/internal/forecaster"
	"github.com/yourusername/forewarden/internal/health"
	applogger "github.com/yourusername/forewarden/internal/logger"
	"github.com/yourusername/forewarden/internal/metrics"
	"github.com/yourusername/forewarden/internal/models"
	"github.com/yourusername/forewarden/internal/repository"
	"github.com/yourusername/forewarden/internal/scheduler"
	"github.com/yourusername/forewarden/internal/validation"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	dataFile   string
	symbol     string
	logger     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	serveCmd.Flags().StringVar(&dataFile, "data", "", "Path to the input series CSV (time,price)")
	serveCmd.Flags().StringVar(&symbol, "symbol", "default", "Symbol of the input series")

	historyCmd.Flags().Int("limit", 10, "Number of recent window results to show")
	weightsCmd.Flags().String("run", "", "Run ID to show weights for")

	rootCmd.AddCommand(statusCmd, weightsCmd, historyCmd, serveCmd)
}

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Operate the walk-forward validation engine",
	Long:  `Inspects validation runs, ensemble weights and forecast service health, and serves scheduled revalidation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check forecast service and database status",
	Run: func(cmd *cobra.Command, args []string) {
		displayStatus()
	},
}

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the latest ensemble weights for a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		runFlag, _ := cmd.Flags().GetString("run")
		runID, err := uuid.Parse(runFlag)
		if err != nil {
			return fmt.Errorf("invalid run ID: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := setupDatabase(ctx); err != nil {
			return err
		}
		defer db.Close()

		snapshot, err := repos.WeightHistory.GetLatest(ctx, runID)
		if err != nil {
			return fmt.Errorf("failed to fetch weights: %w", err)
		}

		fmt.Printf("Run %s (%s, update %d at %s)\n", snapshot.RunID, snapshot.Method, snapshot.Order, snapshot.Timestamp.Format(time.RFC3339))
		for name, w := range snapshot.Weights {
			fmt.Printf("  %-16s  %.4f\n", name, w)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent window results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := setupDatabase(ctx); err != nil {
			return err
		}
		defer db.Close()

		results, err := repos.WindowResult.GetLatest(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to fetch window results: %w", err)
		}

		fmt.Printf("%-8s %-10s %-10s %-12s %-12s %-10s %s\n",
			"window", "symbol", "status", "val", "test", "div", "created")
		for _, r := range results {
			fmt.Printf("%-8d %-10s %-10s %-12.4f %-12.4f %-10.4f %s\n",
				r.WindowID, r.Symbol, r.Status, r.ValMetric, r.TestMetric, r.Divergence,
				r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scheduled revalidation with health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dataFile == "" {
			return fmt.Errorf("an input series is required: pass --data <csv>")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
		}

		if cfg.Features.PersistenceEnabled {
			if err := setupDatabase(ctx); err != nil {
				return err
			}
			defer db.Close()
		}

		healthCfg := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
			Logger:      logger,
		}
		if db != nil {
			healthCfg.DB = db
		}
		if cfg.Metrics.Enabled {
			healthCfg.MetricsHandler = metrics.Handler()
		}
		healthServer := health.NewServer(healthCfg)
		if err := healthServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}

		sched := scheduler.NewScheduler(logger)
		if err := sched.ScheduleRevalidation(cfg.Schedule.Revalidation, runRevalidation); err != nil {
			return fmt.Errorf("failed to schedule revalidation: %w", err)
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		healthServer.SetReady(true)

		logger.WithField("next_run", sched.GetNextRun()).Info("Revalidation service started")
		<-ctx.Done()

		healthServer.SetReady(false)
		return sched.Stop()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setupDatabase(ctx context.Context) error {
	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	return nil
}

func displayStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("Forewarden Status")
	fmt.Println("=================")

	fmt.Print("Forecast Service: ")
	client := forecaster.NewServiceForecaster(&cfg.Forecaster, logger)
	defer client.Close()
	if err := client.HealthCheck(ctx); err != nil {
		fmt.Println("UNAVAILABLE")
		fmt.Printf("  Error: %v\n", err)
	} else {
		fmt.Println("ONLINE")
	}

	hits, misses, ratio := client.CacheStats()
	fmt.Printf("\nForecast Cache:\n")
	fmt.Printf("  Hits: %d\n", hits)
	fmt.Printf("  Misses: %d\n", misses)
	fmt.Printf("  Hit Ratio: %.2f%%\n", ratio*100)

	fmt.Print("\nDatabase: ")
	if err := setupDatabase(ctx); err != nil {
		fmt.Println("UNAVAILABLE")
		fmt.Printf("  Error: %v\n", err)
	} else {
		defer db.Close()
		if err := db.HealthCheck(ctx); err != nil {
			fmt.Printf("UNHEALTHY: %v\n", err)
		} else {
			fmt.Println("ONLINE")
		}
	}

	fmt.Println("\nConfiguration:")
	fmt.Printf("  Forecast Service URL: %s\n", cfg.Forecaster.URL)
	fmt.Printf("  Models: %v\n", cfg.Forecaster.Models)
	fmt.Printf("  Ensemble Method: %s\n", cfg.Ensemble.Method)
	fmt.Printf("  Horizon: %d days\n", cfg.Validation.Horizon)
	fmt.Printf("  Windows: %d/%d/%d step %d\n",
		cfg.Validation.TrainDays, cfg.Validation.ValDays, cfg.Validation.TestDays, cfg.Validation.StepSize)
	fmt.Printf("  Revalidation Schedule: %s\n", cfg.Schedule.Revalidation)
	fmt.Println()
}

func runRevalidation(ctx context.Context) (*validation.RunReport, error) {
	series, err := loadSeries(dataFile, symbol)
	if err != nil {
		return nil, err
	}

	fc := forecaster.NewServiceForecaster(&cfg.Forecaster, logger)
	defer fc.Close()

	opt := ensemble.NewOptimizer(ensemble.Config{
		Method:         cfg.Ensemble.Method,
		Alpha:          cfg.Ensemble.Alpha,
		MinWeight:      cfg.Ensemble.MinWeight,
		MaxWeight:      cfg.Ensemble.MaxWeight,
		LookbackWindow: cfg.Ensemble.LookbackWindow,
	}, logger)

	runCfg := validation.FromAppConfig(cfg)
	runCfg.Trigger = "scheduled"

	orch, err := validation.NewOrchestrator(runCfg, fc, opt, logger)
	if err != nil {
		return nil, err
	}
	if repos != nil {
		orch.WithRepositories(repos)
	}

	report, err := orch.Run(ctx, series)
	if err != nil {
		return nil, err
	}

	if cfg.Validation.ExportEnabled {
		if _, err := report.Export(cfg.Validation.OutputPath); err != nil {
			logger.WithError(err).Warn("Failed to export scheduled run report")
		}
	}
	return report, nil
}

func loadSeries(path, sym string) (*models.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open series file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read series file: %w", err)
	}

	series := &models.Series{Symbol: sym}
	for i, row := range rows {
		ts, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("invalid time on row %d: %w", i+1, err)
		}
		price, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, fmt.Errorf("invalid price on row %d: %w", i+1, err)
		}
		series.Observations = append(series.Observations, models.Observation{Time: ts, Price: price})
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

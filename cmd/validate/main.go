// Package main provides the entry point for the walk-forward validation CLI.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/forewarden/internal/config"
	"github.com/yourusername/forewarden/internal/database"
	"github.com/yourusername/forewarden/internal/ensemble"
	"github.com/yourusername/forewarden/internal/forecaster"
	"github.com/yourusername/forewarden/internal/logger"
	"github.com/yourusername/forewarden/internal/metrics"
	"github.com/yourusername/forewarden/internal/models"
	"github.com/yourusername/forewarden/internal/repository"
	"github.com/yourusername/forewarden/internal/validation"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		dataPath   = flag.String("data", "", "Path to the input series CSV (time,price)")
		symbol     = flag.String("symbol", "", "Symbol of the input series")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		method     = flag.String("method", "", "Override ensemble method")
		output     = flag.String("output", "", "Output directory for the JSON report")
		export     = flag.Bool("export", false, "Force JSON export of the run report")
		baseline   = flag.Bool("baseline", false, "Use local baseline models instead of the forecast service")
		season     = flag.Int("season", 7, "Season length for the seasonal baseline model")
	)
	flag.Parse()

	bootstrap := logrus.New()
	bootstrap.SetFormatter(&logrus.JSONFormatter{})

	cfg := loadConfigWithSecrets(*configPath, bootstrap)
	log := logger.NewLogger(cfg.App.LogLevel)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	series := loadSeries(*dataPath, *symbol, cfg, log)
	series = restrictToConfigRange(series, cfg, *startDate, *endDate, log)

	fc := buildForecaster(cfg, *baseline, *season, log)
	opt := ensemble.NewOptimizer(ensembleConfig(cfg, *method), log)

	runCfg := validation.FromAppConfig(cfg)
	orch, err := validation.NewOrchestrator(runCfg, fc, opt, log)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	if cfg.Features.PersistenceEnabled {
		db, repos := initPersistence(ctx, cfg, log)
		defer db.Close()
		orch.WithRepositories(repos)
	}

	log.WithFields(logrus.Fields{
		"symbol":  series.Symbol,
		"rows":    series.Len(),
		"method":  opt.LastMethod(),
		"horizon": runCfg.Horizon,
	}).Info("Starting walk-forward validation")

	report, err := orch.Run(ctx, series)
	if err != nil {
		if report != nil {
			report.WriteText(os.Stdout)
		}
		log.Fatalf("Validation run failed: %v", err)
	}

	report.WriteText(os.Stdout)

	if *export || cfg.Validation.ExportEnabled {
		dir := *output
		if dir == "" {
			dir = cfg.Validation.OutputPath
		}
		path, err := report.Export(dir)
		if err != nil {
			log.Fatalf("Failed to export report: %v", err)
		}
		log.WithField("path", path).Info("Report exported")
	}
}

func loadConfigWithSecrets(path string, log *logrus.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// loadSeries reads a time,price CSV. The first row is treated as a header if
// its time column fails to parse.
func loadSeries(path, symbol string, cfg *config.Config, log *logrus.Logger) *models.Series {
	if path == "" {
		log.Fatal("An input series is required: pass -data <csv>")
	}
	if symbol == "" {
		symbol = "default"
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open series file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	rows, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read series file: %v", err)
	}

	series := &models.Series{Symbol: symbol}
	for i, row := range rows {
		ts, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			if i == 0 {
				continue
			}
			log.Fatalf("Invalid time on row %d: %v", i+1, err)
		}
		price, err := decimal.NewFromString(row[1])
		if err != nil {
			log.Fatalf("Invalid price on row %d: %v", i+1, err)
		}
		series.Observations = append(series.Observations, models.Observation{Time: ts, Price: price})
	}

	if err := series.Validate(); err != nil {
		log.Fatalf("Invalid series: %v", err)
	}
	return series
}

func restrictToConfigRange(series *models.Series, cfg *config.Config, startOverride, endOverride string, log *logrus.Logger) *models.Series {
	start := parseDate(cfg.Validation.StartDate, log)
	end := parseDate(cfg.Validation.EndDate, log)
	if startOverride != "" {
		start = parseDate(startOverride, log)
	}
	if endOverride != "" {
		end = parseDate(endOverride, log)
	}
	return series.Slice(start, end)
}

func parseDate(value string, log *logrus.Logger) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		log.Fatalf("Invalid date %q: %v", value, err)
	}
	return parsed
}

func buildForecaster(cfg *config.Config, baseline bool, season int, log *logrus.Logger) forecaster.Forecaster {
	if baseline || cfg.Forecaster.URL == "" {
		log.Info("Using local baseline forecaster")
		return forecaster.NewNaive(season)
	}
	return forecaster.NewServiceForecaster(&cfg.Forecaster, log)
}

func ensembleConfig(cfg *config.Config, methodOverride string) ensemble.Config {
	method := cfg.Ensemble.Method
	if methodOverride != "" {
		method = methodOverride
	}
	return ensemble.Config{
		Method:         method,
		Alpha:          cfg.Ensemble.Alpha,
		MinWeight:      cfg.Ensemble.MinWeight,
		MaxWeight:      cfg.Ensemble.MaxWeight,
		LookbackWindow: cfg.Ensemble.LookbackWindow,
	}
}

func initPersistence(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*database.DB, *repository.Repositories) {
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	return db, repos
}

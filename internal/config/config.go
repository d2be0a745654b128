// Package config provides configuration management for the Forewarden validation engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Forecaster   ForecasterConfig   `mapstructure:"forecaster" validate:"required"`
	Validation   ValidationConfig   `mapstructure:"validation" validate:"required"`
	Ensemble     EnsembleConfig     `mapstructure:"ensemble" validate:"required"`
	Significance SignificanceConfig `mapstructure:"significance" validate:"required"`
	Schedule     ScheduleConfig     `mapstructure:"schedule" validate:"required"`
	Metrics      MetricsConfig      `mapstructure:"metrics" validate:"required"`
	Features     FeaturesConfig     `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ForecasterConfig represents the external forecast service configuration
type ForecasterConfig struct {
	URL                string   `mapstructure:"url" validate:"required,url"`
	APIKey             string   `mapstructure:"api_key"`
	TimeoutSeconds     int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts      int      `mapstructure:"retry_attempts" validate:"required,gte=0"`
	RateLimitPerSecond float64  `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CircuitBreakerMax  int      `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
	CacheTTLSeconds    int      `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize       int      `mapstructure:"cache_max_size" validate:"required,gt=0"`
	Models             []string `mapstructure:"models" validate:"required,min=1"`
	MinTrainingSamples int      `mapstructure:"min_training_samples" validate:"required,gt=0"`
}

// ValidationConfig represents walk-forward validation configuration
type ValidationConfig struct {
	StartDate             string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate               string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	TrainDays             int     `mapstructure:"train_days" validate:"required,gt=0"`
	ValDays               int     `mapstructure:"val_days" validate:"required,gt=0"`
	TestDays              int     `mapstructure:"test_days" validate:"required,gt=0"`
	StepSize              int     `mapstructure:"step_size" validate:"required,gt=0"`
	Horizon               int     `mapstructure:"horizon" validate:"required,gt=0"`
	DivergenceThreshold   float64 `mapstructure:"divergence_threshold" validate:"gte=0"`
	RefitFrequency        int     `mapstructure:"refit_frequency" validate:"required,gt=0"`
	WeightUpdateFrequency int     `mapstructure:"weight_update_frequency" validate:"required,gt=0"`
	OutputPath            string  `mapstructure:"output_path" validate:"required"`
	ExportEnabled         bool    `mapstructure:"export_enabled"`
}

// EnsembleConfig represents weight optimization configuration
type EnsembleConfig struct {
	Method         string  `mapstructure:"method" validate:"required,optmethod"`
	Alpha          float64 `mapstructure:"alpha" validate:"gte=0"`
	MinWeight      float64 `mapstructure:"min_weight" validate:"gte=0,lte=1"`
	MaxWeight      float64 `mapstructure:"max_weight" validate:"gt=0,lte=1"`
	LookbackWindow int     `mapstructure:"lookback_window" validate:"gte=0"`
}

// SignificanceConfig represents the Diebold-Mariano deployment gate configuration
type SignificanceConfig struct {
	Loss              string  `mapstructure:"loss" validate:"required,oneof=absolute squared"`
	SignificanceLevel float64 `mapstructure:"significance_level" validate:"required,gt=0,lt=1"`
}

// ScheduleConfig represents periodic re-validation scheduling
type ScheduleConfig struct {
	Revalidation string `mapstructure:"revalidation" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	PersistenceEnabled  bool `mapstructure:"persistence_enabled"`
	SignificanceGate    bool `mapstructure:"significance_gate"`
	OnlineRecalibration bool `mapstructure:"online_recalibration"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetForecasterURL returns the forecast service base URL
func (c *Config) GetForecasterURL() string {
	return c.Forecaster.URL
}

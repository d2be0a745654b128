package forecaster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/forewarden/internal/config"
	"github.com/yourusername/forewarden/internal/logger"
	"github.com/yourusername/forewarden/internal/metrics"
)

// ServiceForecaster implements Forecaster against the HTTP forecast service.
// Responses are cached by model, history fingerprint and horizon.
type ServiceForecaster struct {
	baseURL            string
	apiKey             string
	models             []string
	minTrainingSamples int
	httpClient         *RateLimitedHTTPClient
	cache              *ForecastCache
	log                *logger.ForecasterLogger
}

// NewServiceForecaster creates a forecast service client from configuration.
func NewServiceForecaster(cfg *config.ForecasterConfig, baseLogger *logrus.Logger) *ServiceForecaster {
	httpCfg := HTTPClientConfig{
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.RetryAttempts,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         cfg.RateLimitPerSecond,
		CircuitBreakerMax: cfg.CircuitBreakerMax,
	}

	return &ServiceForecaster{
		baseURL:            cfg.URL,
		apiKey:             cfg.APIKey,
		models:             append([]string(nil), cfg.Models...),
		minTrainingSamples: cfg.MinTrainingSamples,
		httpClient:         NewRateLimitedHTTPClient(httpCfg, nil),
		cache:              NewForecastCache(time.Duration(cfg.CacheTTLSeconds)*time.Second, cfg.CacheMaxSize),
		log:                logger.NewForecasterLogger(baseLogger),
	}
}

// Models lists the model names the service serves.
func (s *ServiceForecaster) Models() []string {
	return append([]string(nil), s.models...)
}

// Train fits the named model on an ordered target series.
func (s *ServiceForecaster) Train(ctx context.Context, model string, values []float64) error {
	if !s.knownModel(model) {
		return ErrUnknownModel
	}
	if len(values) < s.minTrainingSamples {
		return fmt.Errorf("%w: %d samples, need %d", ErrInsufficientData, len(values), s.minTrainingSamples)
	}

	start := time.Now()
	var resp TrainResponse
	err := s.post(ctx, "/train", TrainRequest{Model: model, Values: values}, &resp)
	if err != nil {
		s.log.LogForecastError(model, err.Error())
		return err
	}
	if !resp.Trained {
		s.log.LogForecastError(model, resp.Message)
		return fmt.Errorf("%w: %s", ErrInvalidForecast, resp.Message)
	}

	s.log.LogModelTraining(model, len(values), time.Since(start).Seconds())
	return nil
}

// Predict returns a horizon-step forecast continuing the given history.
func (s *ServiceForecaster) Predict(ctx context.Context, model string, history []float64, horizon int) ([]float64, error) {
	if !s.knownModel(model) {
		return nil, ErrUnknownModel
	}
	if horizon <= 0 {
		return nil, ErrInvalidForecast
	}

	key := NewCacheKey(model, history, horizon)
	if cached := s.cache.Get(key); cached != nil {
		metrics.RecordForecastRequest(0, true)
		s.log.LogForecastRequest(model, horizon, true, 0)
		return cached, nil
	}

	start := time.Now()
	var resp ForecastResponse
	err := s.post(ctx, "/forecast", ForecastRequest{Model: model, History: history, Horizon: horizon}, &resp)
	latency := time.Since(start)
	if err != nil {
		if s.httpClient.IsOpen() {
			metrics.RecordCircuitBreakerTrip()
		}
		s.log.LogForecastError(model, err.Error())
		return nil, err
	}

	if len(resp.Forecast) != horizon {
		s.log.LogForecastError(model, fmt.Sprintf("expected %d forecast steps, got %d", horizon, len(resp.Forecast)))
		return nil, ErrInvalidForecast
	}

	s.cache.Set(key, resp.Forecast)
	metrics.RecordForecastRequest(latency.Seconds(), false)
	s.log.LogForecastRequest(model, horizon, false, float64(latency.Milliseconds()))
	return resp.Forecast, nil
}

// HealthCheck probes the forecast service health endpoint.
func (s *ServiceForecaster) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// CacheStats exposes forecast cache hit statistics.
func (s *ServiceForecaster) CacheStats() (hits, misses uint64, ratio float64) {
	return s.cache.Stats()
}

// Close releases client resources.
func (s *ServiceForecaster) Close() error {
	return s.httpClient.Close()
}

func (s *ServiceForecaster) knownModel(model string) bool {
	for _, m := range s.models {
		if m == model {
			return true
		}
	}
	return false
}

func (s *ServiceForecaster) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidForecast, err)
	}
	return nil
}

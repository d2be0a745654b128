package forecaster

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/forewarden/internal/config"
)

func newTestForecasterConfig(url string) *config.ForecasterConfig {
	return &config.ForecasterConfig{
		URL:                url,
		TimeoutSeconds:     5,
		RetryAttempts:      0,
		RateLimitPerSecond: 100,
		CircuitBreakerMax:  3,
		CacheTTLSeconds:    60,
		CacheMaxSize:       100,
		Models:             []string{"arima", "prophet"},
		MinTrainingSamples: 10,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/train", func(w http.ResponseWriter, r *http.Request) {
		var req TrainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(TrainResponse{
			Model:    req.Model,
			Trained:  true,
			NSamples: len(req.Values),
		})
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		var req ForecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// Echo the last history value horizon times
		last := req.History[len(req.History)-1]
		forecast := make([]float64, req.Horizon)
		for i := range forecast {
			forecast[i] = last
		}
		_ = json.NewEncoder(w).Encode(ForecastResponse{Model: req.Model, Forecast: forecast})
	})
	return httptest.NewServer(mux)
}

func TestServiceForecasterTrainAndPredict(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	sf := NewServiceForecaster(newTestForecasterConfig(server.URL), logrus.New())
	defer sf.Close()

	ctx := context.Background()
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(100 + i)
	}

	if err := sf.Train(ctx, "arima", values); err != nil {
		t.Fatalf("unexpected training error: %v", err)
	}

	forecast, err := sf.Predict(ctx, "arima", values, 5)
	if err != nil {
		t.Fatalf("unexpected prediction error: %v", err)
	}
	if len(forecast) != 5 {
		t.Fatalf("expected 5 forecast steps, got %d", len(forecast))
	}
	if forecast[0] != 149 {
		t.Errorf("expected forecast 149, got %v", forecast[0])
	}
}

func TestServiceForecasterCacheHit(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	sf := NewServiceForecaster(newTestForecasterConfig(server.URL), logrus.New())
	defer sf.Close()

	ctx := context.Background()
	history := []float64{1, 2, 3}

	if _, err := sf.Predict(ctx, "arima", history, 2); err != nil {
		t.Fatalf("unexpected prediction error: %v", err)
	}
	if _, err := sf.Predict(ctx, "arima", history, 2); err != nil {
		t.Fatalf("unexpected prediction error: %v", err)
	}

	hits, _, _ := sf.CacheStats()
	if hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", hits)
	}
}

func TestServiceForecasterInsufficientData(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	sf := NewServiceForecaster(newTestForecasterConfig(server.URL), logrus.New())
	defer sf.Close()

	err := sf.Train(context.Background(), "arima", []float64{1, 2, 3})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestServiceForecasterUnknownModel(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	sf := NewServiceForecaster(newTestForecasterConfig(server.URL), logrus.New())
	defer sf.Close()

	_, err := sf.Predict(context.Background(), "lstm", []float64{1, 2, 3}, 2)
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestServiceForecasterServiceDown(t *testing.T) {
	server := newTestServer(t)
	server.Close() // shut down immediately

	cfg := newTestForecasterConfig(server.URL)
	sf := NewServiceForecaster(cfg, logrus.New())
	defer sf.Close()

	_, err := sf.Predict(context.Background(), "arima", []float64{1, 2, 3}, 2)
	if err == nil {
		t.Fatal("expected error against closed server")
	}
}

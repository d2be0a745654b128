package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestValidationLoggerWindowResult(t *testing.T) {
	log, buf := setupTestLogger()
	validationLogger := NewValidationLogger(log)

	validationLogger.LogWindowResult(3, 0.021, 0.028, 0.333, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(3), logEntry["window_id"])
	assert.Equal(t, "validation", logEntry["component"])
	assert.Equal(t, true, logEntry["overfitting"])
}

func TestValidationLoggerWindowSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	validationLogger := NewValidationLogger(log)

	validationLogger.LogWindowSkipped(7, "insufficient training data")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(7), logEntry["window_id"])
	assert.Equal(t, "insufficient training data", logEntry["reason"])
}

func TestValidationLoggerWeightUpdate(t *testing.T) {
	log, buf := setupTestLogger()
	validationLogger := NewValidationLogger(log)

	validationLogger.LogWeightUpdate(4, "inverse_error", map[string]float64{"arima": 0.4, "prophet": 0.6})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "inverse_error", logEntry["method"])
}

func TestValidationLoggerSignificanceResult(t *testing.T) {
	log, buf := setupTestLogger()
	validationLogger := NewValidationLogger(log)

	validationLogger.LogSignificanceResult(-2.31, 0.021, true, true, 150)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(150), logEntry["sample_size"])
	assert.Equal(t, true, logEntry["promote"])
}

func TestForecasterLoggerRequest(t *testing.T) {
	log, buf := setupTestLogger()
	forecasterLogger := NewForecasterLogger(log)

	forecasterLogger.LogForecastRequest("arima", 5, true, 45)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "arima", logEntry["model"])
	assert.Equal(t, "forecaster", logEntry["component"])
}

func TestForecasterLoggerError(t *testing.T) {
	log, buf := setupTestLogger()
	forecasterLogger := NewForecasterLogger(log)

	forecasterLogger.LogForecastError("lstm", "timeout after 30s")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "lstm", logEntry["model"])
	assert.Equal(t, "timeout after 30s", logEntry["error_reason"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	validationLogger := NewValidationLogger(log)

	validationLogger.LogWindowResult(0, 0.01, 0.011, 0.1, false)

	// Verify output is valid JSON
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkValidationLoggerWindowResult(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	validationLogger := NewValidationLogger(log)

	for i := 0; i < b.N; i++ {
		validationLogger.LogWindowResult(i, 0.021, 0.028, 0.333, false)
	}
}

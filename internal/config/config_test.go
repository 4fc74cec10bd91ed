package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDatasetURL = "https://mirror.example.org/gistemp/GLB.Ts+dSST.csv"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultDatasetURL, cfg.DatasetURL)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5, cfg.PreviewRows)
	assert.Equal(t, 16, cfg.ChartCacheSize)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "climate-annual-anomalies", cfg.KafkaTopic)
	assert.False(t, cfg.PublishEnabled())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATASET_URL", testDatasetURL)
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("PREVIEW_ROWS", "10")
	t.Setenv("CHART_CACHE_SIZE", "4")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "anomalies")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testDatasetURL, cfg.DatasetURL)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10, cfg.PreviewRows)
	assert.Equal(t, 4, cfg.ChartCacheSize)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "anomalies", cfg.KafkaTopic)
	assert.True(t, cfg.PublishEnabled())
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_InvalidPreviewRows(t *testing.T) {
	t.Setenv("PREVIEW_ROWS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREVIEW_ROWS")
}

func TestLoad_InvalidChartCacheSize(t *testing.T) {
	t.Setenv("CHART_CACHE_SIZE", "lots")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHART_CACHE_SIZE")
}

func TestLoad_InvalidDatasetURL(t *testing.T) {
	for _, raw := range []string{"ftp://data.giss.nasa.gov/x.csv", "GLB.Ts+dSST.csv", "https://"} {
		t.Setenv("DATASET_URL", raw)
		_, err := Load()
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "DATASET_URL")
	}
}

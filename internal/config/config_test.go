package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.RequestTimeout)

	assert.Equal(t, 5*time.Second, cfg.Poll.LatestInterval)
	assert.Equal(t, 30*time.Second, cfg.Poll.StatusInterval)
	assert.Equal(t, 24, cfg.Poll.StatsHours)

	assert.Equal(t, 60, cfg.Stream.BufferCapacity)

	// 无阈值文件时使用临床默认值
	assert.Equal(t, 50.0, cfg.Thresholds.HeartRate.Low)
	assert.Equal(t, 110.0, cfg.Thresholds.HeartRate.High)
	assert.Equal(t, 92.0, cfg.Thresholds.SpO2.Low)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("BACKEND_URL", "http://edge-node:9000")
	os.Setenv("REQUEST_TIMEOUT_SEC", "3")
	os.Setenv("POLL_LATEST_SEC", "2")
	os.Setenv("POLL_STATUS_SEC", "60")
	os.Setenv("STREAM_BUFFER_CAPACITY", "30")
	os.Setenv("HG_USERNAME", "operator")
	os.Setenv("HG_PASSWORD", "secret")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	// 验证环境变量覆盖
	assert.Equal(t, "http://edge-node:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.Poll.LatestInterval)
	assert.Equal(t, 60*time.Second, cfg.Poll.StatusInterval)
	assert.Equal(t, 30, cfg.Stream.BufferCapacity)
	assert.Equal(t, "operator", cfg.Auth.Username)
	assert.Equal(t, "secret", cfg.Auth.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// 清理环境变量
	os.Clearenv()
}

func TestLoad_ThresholdsFile(t *testing.T) {
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := `
heart_rate:
  low: 45
  high: 120
spo2:
  low: 90
  high: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	os.Setenv("THRESHOLDS_FILE", path)
	defer os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45.0, cfg.Thresholds.HeartRate.Low)
	assert.Equal(t, 120.0, cfg.Thresholds.HeartRate.High)
	assert.Equal(t, 90.0, cfg.Thresholds.SpO2.Low)
	// 文件未覆盖的项保持默认值
	assert.Equal(t, 35.5, cfg.Thresholds.Temperature.Low)
}

func TestLoad_ThresholdsFileMissing(t *testing.T) {
	os.Clearenv()
	os.Setenv("THRESHOLDS_FILE", "/nonexistent/thresholds.yaml")
	defer os.Clearenv()

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	// 测试默认值
	os.Clearenv()
	value := getEnv("TEST_KEY", "default-value")
	assert.Equal(t, "default-value", value)

	// 测试环境变量存在
	os.Setenv("TEST_KEY", "env-value")
	value = getEnv("TEST_KEY", "default-value")
	assert.Equal(t, "env-value", value)

	// 清理
	os.Unsetenv("TEST_KEY")
}

func TestGetEnvInt(t *testing.T) {
	os.Clearenv()
	assert.Equal(t, 7, getEnvInt("TEST_INT", 7))

	os.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 7))

	// 非法值回落到默认
	os.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("TEST_INT", 7))

	os.Unsetenv("TEST_INT")
}

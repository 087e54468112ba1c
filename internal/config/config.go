package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"healthguard-console/internal/vitals"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 监护台配置
type Config struct {
	// 后端连接
	Backend struct {
		BaseURL        string        // 边缘节点后端基础地址
		RequestTimeout time.Duration // 单次 REST 请求超时
	}

	// 登录凭证（可选；为空时由上层交互式登录）
	Auth struct {
		Username string
		Password string
	}

	// 轮询周期
	Poll struct {
		LatestInterval time.Duration // 最新读数
		StatusInterval time.Duration // 设备状态
		StatsHours     int           // 聚合统计窗口（小时）
	}

	// 流订阅
	Stream struct {
		BufferCapacity int // 历史缓冲区容量
	}

	// 报警阈值（可选 YAML 文件，缺省用临床默认值）
	ThresholdsFile string
	Thresholds     vitals.Thresholds

	Log struct {
		Level   string
		Format  string
		File    string // 非空时输出到文件并按大小轮转
		Console bool   // 输出到文件时是否同时输出到控制台
	}
}

// Load 加载配置
// 优先读取当前目录 .env，其次环境变量，最后内置默认值
func Load() (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Backend.BaseURL = getEnv("BACKEND_URL", "http://localhost:8000")
	cfg.Backend.RequestTimeout = time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 10)) * time.Second

	cfg.Auth.Username = getEnv("HG_USERNAME", "")
	cfg.Auth.Password = getEnv("HG_PASSWORD", "")

	cfg.Poll.LatestInterval = time.Duration(getEnvInt("POLL_LATEST_SEC", 5)) * time.Second
	cfg.Poll.StatusInterval = time.Duration(getEnvInt("POLL_STATUS_SEC", 30)) * time.Second
	cfg.Poll.StatsHours = getEnvInt("STATS_HOURS", 24)

	cfg.Stream.BufferCapacity = getEnvInt("STREAM_BUFFER_CAPACITY", 60)

	cfg.ThresholdsFile = getEnv("THRESHOLDS_FILE", "")
	thresholds, err := loadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return nil, err
	}
	cfg.Thresholds = thresholds

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")
	cfg.Log.File = getEnv("LOG_FILE", "")
	cfg.Log.Console = getEnv("LOG_CONSOLE", "true") == "true"

	return cfg, nil
}

// loadThresholds 从 YAML 文件加载阈值；path 为空时返回默认阈值
func loadThresholds(path string) (vitals.Thresholds, error) {
	thresholds := vitals.DefaultThresholds()
	if path == "" {
		return thresholds, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return thresholds, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &thresholds); err != nil {
		return thresholds, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	return thresholds, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

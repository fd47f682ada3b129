package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
	}

	Upstream struct {
		BMKGURL    string
		BMKGAdm4   string
		WilayahURL string
		Timeout    time.Duration
	}

	Chat struct {
		GeminiAPIKey string
		Model        string
		RateLimit    float64
		RateBurst    int
	}

	Storage struct {
		Path string
	}

	Cache struct {
		Duration time.Duration
		MaxSize  int
	}

	Scheduler struct {
		WeatherRefresh string
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}

	Disease struct {
		MockDelay time.Duration
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "30s"))

	// Upstream APIs
	cfg.Upstream.BMKGURL = getEnv("BMKG_URL", "https://api.bmkg.go.id/publik")
	cfg.Upstream.BMKGAdm4 = getEnv("BMKG_ADM4", "31.71.03.1001")
	cfg.Upstream.WilayahURL = getEnv("WILAYAH_URL", "https://wilayah.id/api")
	cfg.Upstream.Timeout = parseDuration(getEnv("UPSTREAM_TIMEOUT", "10s"))

	// Chat model
	cfg.Chat.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	cfg.Chat.Model = getEnv("GEMINI_MODEL", "gemini-2.0-flash")
	cfg.Chat.RateLimit = parseFloat(getEnv("CHAT_RATE_LIMIT", "2"))
	cfg.Chat.RateBurst = parseInt(getEnv("CHAT_RATE_BURST", "5"))

	cfg.Storage.Path = getEnv("STORAGE_PATH", "farmlens.db")

	// Cache configuration
	cfg.Cache.Duration = parseDuration(getEnv("CACHE_DURATION", "10m"))
	cfg.Cache.MaxSize = parseInt(getEnv("MAX_CACHE_SIZE", "500"))

	cfg.Scheduler.WeatherRefresh = getEnv("WEATHER_REFRESH_SCHEDULE", "@every 15m")

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "5"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retries are off by default: every proxied request is a single attempt.
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "0"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	cfg.Disease.MockDelay = parseDuration(getEnv("DISEASE_MOCK_DELAY", "2s"))

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string
	CacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	BridgeAPIBase  string
	BridgeBotToken string
	BridgeChatID   int64
	BridgeTimeout  time.Duration

	GinMode  string
	HTTPPort string
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "locals"),
		DBPassword: getEnv("DB_PASSWORD", "locals"),
		DBName:     getEnv("DB_NAME", "locals"),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getDurationEnv("CACHE_TTL", 5*time.Minute),

		KafkaBrokers: getSliceEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "item-events"),

		BridgeAPIBase:  getEnv("BRIDGE_API_BASE", "https://api.telegram.org"),
		BridgeBotToken: getEnv("BRIDGE_BOT_TOKEN", ""),
		BridgeChatID:   getInt64Env("BRIDGE_CHAT_ID", 0),
		BridgeTimeout:  getDurationEnv("BRIDGE_TIMEOUT", 5*time.Second),

		GinMode:  getEnv("GIN_MODE", "debug"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt64Env(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key, defaultValue string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = defaultValue
	}
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

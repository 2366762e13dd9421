package config

import (
	"fmt"
	"log"
	"os"
	"time"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env              string
	HTTPPort         string
	RedisAddr        string
	QueueBackend     string
	QueueKey         string
	JWTIssuer        string
	JWTSigningKey    string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	AdminAPIKey      string
	RateLimitPerMin  int
	HeartbeatTimeout time.Duration
	HeartbeatSweep   time.Duration
	HistorySize      int
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	return App{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPPort:         getEnv("HTTP_PORT", "8081"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		QueueBackend:     getEnv("QUEUE_BACKEND", "memory"),
		QueueKey:         getEnv("QUEUE_KEY", "rfidattend:events"),
		JWTIssuer:        getEnv("JWT_ISSUER", "rfidattend"),
		JWTSigningKey:    getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:        durationEnv("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       durationEnv("REFRESH_TTL", 24*time.Hour),
		AdminAPIKey:      getEnv("ADMIN_API_KEY", ""),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 120),
		HeartbeatTimeout: durationEnv("HEARTBEAT_TIMEOUT", 15*time.Second),
		HeartbeatSweep:   durationEnv("HEARTBEAT_SWEEP", time.Second),
		HistorySize:      intEnv("HISTORY_SIZE", 100),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

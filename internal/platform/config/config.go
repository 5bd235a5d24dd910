package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs, read once at startup and passed
// to component constructors. No package-level settings singleton.
type Config struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration

	// PhonePattern is the national visitor-phone format issuance enforces.
	PhonePattern string

	// PostgresDSN is empty for in-memory runs (tests, local demos).
	PostgresDSN string

	Redis RedisConfig

	// KafkaBrokers empty disables the audit producer.
	KafkaBrokers []string
	AuditTopic   string
}

// RedisConfig controls the optional validation cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:          getenv("GATEPASS_ADDR", ":8080"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:      getenvDuration("TOKEN_TTL", 12*time.Hour),
		PhonePattern:  getenv("VISITOR_PHONE_PATTERN", `^\+221\d{9}$`),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		AuditTopic:    getenv("AUDIT_TOPIC", "gatepass.audit"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitComma(brokers)
	}
	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}

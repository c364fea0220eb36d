package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration, read once in main.
type Config struct {
	Server    Server
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Providers ProvidersConfig
	Guard     GuardConfig

	// DefaultProvider applies when an organization has no usable setting.
	DefaultProvider string
	// OrgSettingsCacheTTL bounds how long a provider switch takes to reach
	// other instances.
	OrgSettingsCacheTTL time.Duration
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	Env           string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// IsDevelopment reports whether the process runs locally.
func (s Server) IsDevelopment() bool {
	return s.Env == "" || s.Env == "development"
}

type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	AttemptsTopic string
}

// ProvidersConfig selects the provider transport. Mode "mock" answers
// deterministically without network calls.
type ProvidersConfig struct {
	Mode     string
	Timeout  time.Duration
	Standard Endpoint
	GL       Endpoint
}

type Endpoint struct {
	BaseURL string
	APIKey  string
}

// GuardConfig bounds the cross-instance in-flight lease.
type GuardConfig struct {
	LeaseTTL time.Duration
}

const (
	ProviderModeMock = "mock"
	ProviderModeHTTP = "http"
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:          getenv("BGV_ADDR", ":8080"),
			Env:           getenv("BGV_ENV", "development"),
			LogLevel:      getenv("LOG_LEVEL", "info"),
			JWTSigningKey: jwtSigningKey,
			JWTIssuer:     getenv("JWT_ISSUER", "bgv"),
			JWTAudience:   getenv("JWT_AUDIENCE", "bgv-api"),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getenvInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getenvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getenvDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			AttemptsTopic: getenv("KAFKA_ATTEMPTS_TOPIC", "verification.attempts"),
		},
		Providers: ProvidersConfig{
			Mode:    strings.ToLower(getenv("PROVIDER_MODE", ProviderModeMock)),
			Timeout: getenvDuration("PROVIDER_TIMEOUT", 30*time.Second),
			Standard: Endpoint{
				BaseURL: os.Getenv("PROVIDER_STANDARD_URL"),
				APIKey:  os.Getenv("PROVIDER_STANDARD_API_KEY"),
			},
			GL: Endpoint{
				BaseURL: os.Getenv("PROVIDER_GL_URL"),
				APIKey:  os.Getenv("PROVIDER_GL_API_KEY"),
			},
		},
		Guard: GuardConfig{
			LeaseTTL: getenvDuration("INFLIGHT_LEASE_TTL", 2*time.Minute),
		},
		DefaultProvider:     getenv("DEFAULT_PROVIDER", "standard"),
		OrgSettingsCacheTTL: getenvDuration("ORG_SETTINGS_CACHE_TTL", time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getenvDuration accepts Go duration strings ("90s", "2m").
func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

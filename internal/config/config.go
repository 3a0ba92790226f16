package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/klink-asia/registry/pkg/config"
	"github.com/klink-asia/registry/pkg/database"
)

// Config holds the full service configuration, loaded from the environment.
type Config struct {
	Service  ServiceConfig
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	SMTP     SMTPConfig
	JWT      JWTConfig
	Token    TokenConfig
	Access   AccessConfig
	Tracing  TracingConfig
}

type ServiceConfig struct {
	Name     string `env:"SERVICE_NAME" envDefault:"registry"`
	Version  string `env:"SERVICE_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type PostgresConfig struct {
	Host        string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port        int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User        string        `env:"POSTGRES_USER" envDefault:"registry"`
	Password    string        `env:"POSTGRES_PASSWORD,required"`
	Database    string        `env:"POSTGRES_DB" envDefault:"registry"`
	SSLMode     string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxConns    int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns    int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	MaxConnLife time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdle time.Duration `env:"POSTGRES_MAX_CONN_IDLE" envDefault:"5m"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"registry.events"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" envDefault:"localhost"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME" envDefault:""`
	Password string `env:"SMTP_PASSWORD" envDefault:""`
	From     string `env:"SMTP_FROM" envDefault:"noreply@example.com"`
	BaseURL  string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
}

type JWTConfig struct {
	Secret         string        `env:"JWT_SECRET,required"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
	Issuer         string        `env:"JWT_ISSUER" envDefault:"registry"`
}

// TokenConfig controls verification token lifetimes.
type TokenConfig struct {
	TTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
}

// AccessConfig controls application access authentication. TrustedNetworks
// is a comma-separated list of CIDR blocks whose clients may present an
// application secret instead of a session token.
type AccessConfig struct {
	TrustedNetworks []string      `env:"TRUSTED_NETWORKS" envSeparator:"," envDefault:""`
	PreAuthHeader   string        `env:"ACCESS_PREAUTH_HEADER" envDefault:""`
	RateLimit       int           `env:"ACCESS_RATE_LIMIT" envDefault:"30"`
	RateWindow      time.Duration `env:"ACCESS_RATE_WINDOW" envDefault:"1m"`
}

type TracingConfig struct {
	Enabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	Endpoint   string  `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
	SampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that env tags alone cannot express.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("VERIFICATION_TOKEN_TTL must be positive")
	}
	for _, cidr := range c.Access.TrustedNetworks {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if _, err := netip.ParsePrefix(cidr); err != nil {
			return fmt.Errorf("invalid trusted network %q: %w", cidr, err)
		}
	}
	return nil
}

// PostgresPoolConfig converts to the database package's config type.
func (c *Config) PostgresPoolConfig() database.PostgresConfig {
	return database.PostgresConfig{
		Host:        c.Postgres.Host,
		Port:        c.Postgres.Port,
		User:        c.Postgres.User,
		Password:    c.Postgres.Password,
		Database:    c.Postgres.Database,
		SSLMode:     c.Postgres.SSLMode,
		MaxConns:    c.Postgres.MaxConns,
		MinConns:    c.Postgres.MinConns,
		MaxConnLife: c.Postgres.MaxConnLife,
		MaxConnIdle: c.Postgres.MaxConnIdle,
	}
}

// RedisClientConfig converts to the database package's config type.
func (c *Config) RedisClientConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.Redis.Host,
		Port:     c.Redis.Port,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		PoolSize: c.Redis.PoolSize,
	}
}

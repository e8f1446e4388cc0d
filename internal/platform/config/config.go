// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	pstrings "personas/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server    Server
	Logging   Logging
	Database  Database
	Redis     Redis
	Cache     Cache
	Audit     Audit
	Auth      Auth
	Batch     Batch
	RateLimit RateLimit
	Tracing   Tracing
}

type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AdminToken      string
}

type Logging struct {
	Level  string
	Format string
}

// Database is empty when profiles are kept in memory.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Redis is empty when the effective-profile cache is in memory.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Cache struct {
	EffectiveProfileTTL time.Duration
	KeyPrefix           string
	BreakerCooldown     time.Duration
}

// Audit publishes to Kafka when brokers are set, otherwise to the log.
type Audit struct {
	KafkaBrokers []string
	Topic        string
	QueueSize    int
}

type Auth struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

type Batch struct {
	Concurrency int
}

// RateLimit caps requests per viewer per window. Zero requests disables it.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

type Tracing struct {
	ServiceName string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PERSONAS_ADDR", ":8080")
	v.SetDefault("HTTP_READ_TIMEOUT", "10s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "15s")
	v.SetDefault("HTTP_REQUEST_TIMEOUT", "10s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("REDIS_POOL_SIZE", 20)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "2s")
	v.SetDefault("REDIS_READ_TIMEOUT", "500ms")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "500ms")
	v.SetDefault("EFFECTIVE_PROFILE_CACHE_TTL", "60s")
	v.SetDefault("CACHE_KEY_PREFIX", "personas:ep:")
	v.SetDefault("CACHE_BREAKER_COOLDOWN", "10s")
	v.SetDefault("AUDIT_TOPIC", "personas.audit")
	v.SetDefault("AUDIT_QUEUE_SIZE", 1024)
	v.SetDefault("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")
	v.SetDefault("JWT_ISSUER", "personas")
	v.SetDefault("JWT_AUDIENCE", "personas-api")
	v.SetDefault("BATCH_EVAL_CONCURRENCY", runtime.GOMAXPROCS(0))
	v.SetDefault("RATE_LIMIT_REQUESTS", 600)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("OTEL_SERVICE_NAME", "personas")
}

// Load reads the environment, layered over envFile when it exists.
// An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	v := viper.New()
	defaults(v)
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Server: Server{
			Addr:            v.GetString("PERSONAS_ADDR"),
			ReadTimeout:     v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("HTTP_WRITE_TIMEOUT"),
			RequestTimeout:  v.GetDuration("HTTP_REQUEST_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
			AdminToken:      v.GetString("ADMIN_TOKEN"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Database: Database{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: Redis{
			URL:          v.GetString("REDIS_URL"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
			DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
		},
		Cache: Cache{
			EffectiveProfileTTL: v.GetDuration("EFFECTIVE_PROFILE_CACHE_TTL"),
			KeyPrefix:           v.GetString("CACHE_KEY_PREFIX"),
			BreakerCooldown:     v.GetDuration("CACHE_BREAKER_COOLDOWN"),
		},
		Audit: Audit{
			KafkaBrokers: pstrings.SplitList(v.GetString("KAFKA_BROKERS")),
			Topic:        v.GetString("AUDIT_TOPIC"),
			QueueSize:    v.GetInt("AUDIT_QUEUE_SIZE"),
		},
		Auth: Auth{
			JWTSigningKey: v.GetString("JWT_SIGNING_KEY"),
			JWTIssuer:     v.GetString("JWT_ISSUER"),
			JWTAudience:   v.GetString("JWT_AUDIENCE"),
		},
		Batch: Batch{
			Concurrency: v.GetInt("BATCH_EVAL_CONCURRENCY"),
		},
		RateLimit: RateLimit{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Tracing: Tracing{
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("PERSONAS_ADDR is required"))
	}
	if c.Cache.EffectiveProfileTTL <= 0 {
		errs = append(errs, errors.New("EFFECTIVE_PROFILE_CACHE_TTL must be positive"))
	}
	if c.Batch.Concurrency <= 0 {
		errs = append(errs, errors.New("BATCH_EVAL_CONCURRENCY must be positive"))
	}
	if c.Audit.QueueSize <= 0 {
		errs = append(errs, errors.New("AUDIT_QUEUE_SIZE must be positive"))
	}
	if len(c.Audit.KafkaBrokers) > 0 && c.Audit.Topic == "" {
		errs = append(errs, errors.New("AUDIT_TOPIC is required with KAFKA_BROKERS"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or text", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// isMissingFile reports whether err is viper failing to open an explicit
// config file that does not exist.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	Store       string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	RenderBaseURL string
	RenderTimeout time.Duration

	FrontendURL     string
	UploadPath      string
	RateLimitPerMin int
	DefaultMaxCalls int

	KafkaBrokers    []string
	KafkaTopic      string
	OutboxInterval  time.Duration
	OutboxBatchSize int

	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup, typically os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}

	c := &Config{
		AppEnv:   r.str("APP_ENV", "development"),
		LogLevel: r.str("LOG_LEVEL", "info"),
		HTTPAddr: ":" + r.str("PORT", "3000"),

		Store:       strings.ToLower(r.str("STORE", StorePostgres)),
		DatabaseURL: r.str("DATABASE_URL", ""),

		JWTSecret: r.str("JWT_SECRET", ""),
		JWTTTL:    r.ttl("JWT_EXPIRE", 7*24*time.Hour),

		RenderBaseURL: strings.TrimRight(r.str("MANIM_API_URL", "http://localhost:8000"), "/"),
		RenderTimeout: r.duration("RENDER_TIMEOUT", 10*time.Minute),

		FrontendURL:     r.str("FRONTEND_URL", "http://localhost:3001"),
		UploadPath:      r.str("UPLOAD_PATH", "./uploads"),
		RateLimitPerMin: r.number("RATE_LIMIT_PER_MINUTE", 100),
		DefaultMaxCalls: r.number("DEFAULT_MAX_CALLS", 10),

		KafkaBrokers:    r.list("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:      r.str("KAFKA_TOPIC", "animation.status"),
		OutboxInterval:  r.duration("OUTBOX_INTERVAL", time.Second),
		OutboxBatchSize: r.number("OUTBOX_BATCH_SIZE", 100),

		ReadHeaderTimeout: r.duration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		WriteTimeout:      r.duration("HTTP_WRITE_TIMEOUT", 0),
		IdleTimeout:       r.duration("HTTP_IDLE_TIMEOUT", 2*time.Minute),
		ShutdownTimeout:   r.duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	// A generate request waits on two render calls.
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 2*c.RenderTimeout + time.Minute
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRE must be positive"))
	}
	if c.RenderTimeout <= 0 {
		errs = append(errs, errors.New("RENDER_TIMEOUT must be positive"))
	}
	if c.DefaultMaxCalls < 0 {
		errs = append(errs, errors.New("DEFAULT_MAX_CALLS cannot be negative"))
	}
	if c.RateLimitPerMin < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE cannot be negative"))
	}
	return errors.Join(errs...)
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) number(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

// ttl accepts Go durations plus a day suffix ("7d").
func (r *reader) ttl(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if days, ok := strings.CutSuffix(v, "d"); ok && days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("%s: invalid day count %q", key, v))
			return def
		}
		return time.Duration(n) * 24 * time.Hour
	}
	return r.duration(key, def)
}

func (r *reader) list(key string, def []string) []string {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

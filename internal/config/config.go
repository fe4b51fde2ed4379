// Package config loads service settings from .env, the environment and
// command-line flags, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config stores service settings.
type Config struct {
	Port        int
	LogLevel    string
	StoreDriver string
	// SeedAgents are active agents created at startup by the memory store.
	SeedAgents []AgentSeed

	DB         DB
	Redis      Redis
	Kafka      Kafka
	Dispatch   Dispatch
	StoreRetry StoreRetry
	RateLimit  RateLimit
	Pprof      Pprof
}

// DB describes the Postgres connection.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a pgx connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// AgentSeed is an "id:capacity" entry of SEED_AGENTS.
type AgentSeed struct {
	ID       int64
	Capacity int
}

// Redis describes the location mirror. An empty Addr disables it.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Kafka describes the order ingestion and event mirroring topics. No
// brokers disables both.
type Kafka struct {
	Brokers     []string
	Group       string
	OrdersTopic string
	EventsTopic string
}

// Dispatch tunes matching and notification delivery.
type Dispatch struct {
	RadiusMeters     float64
	LocationTTL      time.Duration
	RecheckInterval  time.Duration
	NotifyBuffer     int
	OperationTimeout time.Duration
}

// StoreRetry tunes retries of order store reads.
type StoreRetry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RateLimit is a per-caller budget of Limit requests per Window. Trusted
// backends get ServiceLimit instead.
type RateLimit struct {
	Limit        int
	ServiceLimit int
	Window       time.Duration
	TTL          time.Duration
	MaxBuckets   int
}

// Pprof describes the profiling listener. An empty Addr disables it.
// Non-loopback clients need User and Pass.
type Pprof struct {
	Addr string
	User string
	Pass string
}

// Load reads .env (if present), the environment and os.Args.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(os.Args[1:])
}

// LoadFrom reads the environment and then args. Unknown flags are ignored.
func LoadFrom(args []string) (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	fset := pflag.NewFlagSet("service-dispatch", pflag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.ParseErrorsWhitelist.UnknownFlags = true
	fset.IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fset.StringVar(&cfg.StoreDriver, "store-driver", cfg.StoreDriver, "postgres|memory")
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	var (
		cfg = &Config{
			Port:        defaultPort,
			LogLevel:    defaultLogLevel,
			StoreDriver: DriverPostgres,
			DB:          defaultDB,
			Redis:       Redis{},
			Kafka:       defaultKafka,
			Dispatch:    defaultDispatch,
			StoreRetry:  defaultStoreRetry,
			RateLimit:   defaultRateLimit,
		}
		p = &parser{}
	)

	p.int("PORT", &cfg.Port)
	p.string("LOG_LEVEL", &cfg.LogLevel)
	p.string("STORE_DRIVER", &cfg.StoreDriver)
	p.seeds("SEED_AGENTS", &cfg.SeedAgents)

	p.string("POSTGRES_HOST", &cfg.DB.Host)
	p.string("POSTGRES_PORT", &cfg.DB.Port)
	p.string("POSTGRES_USER", &cfg.DB.User)
	p.string("POSTGRES_PASSWORD", &cfg.DB.Pass)
	p.string("POSTGRES_DB", &cfg.DB.Name)

	p.string("REDIS_ADDR", &cfg.Redis.Addr)
	p.string("REDIS_PASSWORD", &cfg.Redis.Password)
	p.int("REDIS_DB", &cfg.Redis.DB)

	p.list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	p.string("KAFKA_GROUP", &cfg.Kafka.Group)
	p.string("KAFKA_ORDERS_TOPIC", &cfg.Kafka.OrdersTopic)
	p.string("KAFKA_EVENTS_TOPIC", &cfg.Kafka.EventsTopic)

	p.float("DISPATCH_RADIUS_METERS", &cfg.Dispatch.RadiusMeters)
	p.duration("DISPATCH_LOCATION_TTL", &cfg.Dispatch.LocationTTL)
	p.duration("DISPATCH_RECHECK_INTERVAL", &cfg.Dispatch.RecheckInterval)
	p.int("DISPATCH_NOTIFY_BUFFER", &cfg.Dispatch.NotifyBuffer)
	p.duration("DISPATCH_OPERATION_TIMEOUT", &cfg.Dispatch.OperationTimeout)

	p.int("STORE_RETRY_MAX_ATTEMPTS", &cfg.StoreRetry.MaxAttempts)
	p.duration("STORE_RETRY_BASE_DELAY", &cfg.StoreRetry.BaseDelay)
	p.duration("STORE_RETRY_MAX_DELAY", &cfg.StoreRetry.MaxDelay)

	p.int("RATE_LIMIT", &cfg.RateLimit.Limit)
	p.int("RATE_LIMIT_SERVICE", &cfg.RateLimit.ServiceLimit)
	p.duration("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	p.duration("RATE_LIMIT_TTL", &cfg.RateLimit.TTL)
	p.int("RATE_LIMIT_MAX_BUCKETS", &cfg.RateLimit.MaxBuckets)

	p.string("PPROF_ADDR", &cfg.Pprof.Addr)
	p.string("PPROF_USER", &cfg.Pprof.User)
	p.string("PPROF_PASSWORD", &cfg.Pprof.Pass)

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := strconv.Atoi(c.DB.Port); err != nil {
		return fmt.Errorf("invalid POSTGRES_PORT %q: %w", c.DB.Port, err)
	}
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if c.StoreDriver != DriverPostgres && c.StoreDriver != DriverMemory {
		return fmt.Errorf("invalid store driver %q", c.StoreDriver)
	}
	if c.Dispatch.RadiusMeters <= 0 {
		return fmt.Errorf("invalid dispatch radius: %v", c.Dispatch.RadiusMeters)
	}
	for name, d := range map[string]time.Duration{
		"DISPATCH_LOCATION_TTL":      c.Dispatch.LocationTTL,
		"DISPATCH_RECHECK_INTERVAL":  c.Dispatch.RecheckInterval,
		"DISPATCH_OPERATION_TIMEOUT": c.Dispatch.OperationTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.StoreRetry.MaxAttempts < 1 {
		return fmt.Errorf("STORE_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Pprof.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Pprof.Addr); err != nil {
			return fmt.Errorf("invalid PPROF_ADDR %q: %w", c.Pprof.Addr, err)
		}
	}
	return nil
}

// parser records the first malformed variable.
type parser struct{ err error }

func (p *parser) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != "" && p.err == nil
}

func (p *parser) fail(key, v string, err error) {
	p.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
}

func (p *parser) string(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *parser) int(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) float(key string, dst *float64) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = d
	}
}

func (p *parser) list(key string, dst *[]string) {
	if v, ok := p.lookup(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
	}
}

func (p *parser) seeds(key string, dst *[]AgentSeed) {
	var raw []string
	p.list(key, &raw)
	out := make([]AgentSeed, 0, len(raw))
	for _, item := range raw {
		id, capacity, ok := strings.Cut(item, ":")
		if !ok {
			p.fail(key, item, errors.New("want id:capacity"))
			return
		}
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || n <= 0 {
			p.fail(key, item, errors.New("bad agent id"))
			return
		}
		c, err := strconv.Atoi(capacity)
		if err != nil || c < 1 {
			p.fail(key, item, errors.New("bad capacity"))
			return
		}
		out = append(out, AgentSeed{ID: n, Capacity: c})
	}
	if len(out) > 0 {
		*dst = out
	}
}

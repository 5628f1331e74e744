package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
)

// Config stores companion, CLI and worker settings.
// Nested keys are PREFIX_FIELD_NAME, e.g. BACKEND_RETRY_MAX_ATTEMPTS.
type Config struct {
	Port      int       `envconfig:"PORT"`
	Backend   Backend   `envconfig:"BACKEND"`
	Session   Session   `envconfig:"SESSION"`
	Kafka     Kafka     `envconfig:"KAFKA"`
	DB        DB        `envconfig:"POSTGRES"`
	Location  Location  `envconfig:"LOCATION"`
	RateLimit RateLimit `envconfig:"RATE_LIMIT"`
	Journal   Journal   `envconfig:"JOURNAL"`
	Log       Log       `envconfig:"LOG"`
}

// Backend configures the delivery backend client.
type Backend struct {
	BaseURL      string        `split_words:"true"`
	Timeout      time.Duration `split_words:"true"`
	ImageBaseURL string        `split_words:"true"`
	Retry        Retry         `split_words:"true"`
}

// Retry configures retries of read-only backend calls.
type Retry struct {
	MaxAttempts int           `split_words:"true"`
	BaseDelay   time.Duration `split_words:"true"`
	MaxDelay    time.Duration `split_words:"true"`
}

// Session store kinds.
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Session configures where the driver session is persisted.
type Session struct {
	Store     string        `split_words:"true"`
	DBPath    string        `split_words:"true"`
	RedisAddr string        `split_words:"true"`
	RedisKey  string        `split_words:"true"`
	RedisTTL  time.Duration `split_words:"true"`
	// OrderIdleTTL closes order sessions nobody touched for this long.
	OrderIdleTTL time.Duration `split_words:"true"`
}

// Kafka configures the workflow event stream. Empty brokers disable it.
type Kafka struct {
	Brokers []string `split_words:"true"`
	Topic   string   `split_words:"true"`
	GroupID string   `split_words:"true"`
}

// Enabled reports whether the stream is configured.
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0 && strings.TrimSpace(k.Topic) != ""
}

// DB configures the workflow journal database.
type DB struct {
	Host string `split_words:"true"`
	Port string `split_words:"true"`
	User string `split_words:"true"`
	Pass string `envconfig:"PASSWORD"`
	Name string `envconfig:"DB"`
}

// DSN returns a postgres connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Location configures the on-duty location tracker.
type Location struct {
	Enabled         bool          `split_words:"true"`
	Interval        time.Duration `split_words:"true"`
	MinSendInterval time.Duration `split_words:"true"`
}

// RateLimit configures duplicate-submission damping on companion mutation routes.
type RateLimit struct {
	Enabled    bool          `split_words:"true"`
	Rate       float64       `split_words:"true"`
	Burst      int           `split_words:"true"`
	TTL        time.Duration `split_words:"true"`
	MaxBuckets int           `split_words:"true"`
}

// Journal configures the worker's workflow journal. A zero Retention keeps events forever.
type Journal struct {
	Retention        time.Duration `split_words:"true"`
	PurgeInterval    time.Duration `split_words:"true"`
	OperationTimeout time.Duration `split_words:"true"`
	// MetricsAddr is where the worker serves /metrics. Empty disables it.
	MetricsAddr string `split_words:"true"`
}

// Log configures the logger.
type Log struct {
	Level  string `split_words:"true"`
	Format string `split_words:"true"`
}

// Load reads configuration in order: .env (if present) → environment → command-line flags.
func Load() (*Config, error) {
	return LoadArgs(pflag.CommandLine, os.Args[1:])
}

// LoadArgs is Load with an explicit flag set and arguments.
func LoadArgs(fs *pflag.FlagSet, args []string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.Backend.BaseURL, "backend-url", cfg.Backend.BaseURL, "delivery backend base URL")
	fs.StringVar(&cfg.Session.Store, "session-store", cfg.Session.Store, "session store: sqlite, redis or memory")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads .env and the environment on top of the defaults, without flags.
func FromEnv() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Default()
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	cfg.Session.Store = strings.ToLower(strings.TrimSpace(cfg.Session.Store))
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend url: %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("invalid backend timeout: %s", c.Backend.Timeout)
	}
	if c.Backend.Retry.MaxAttempts < 1 {
		return fmt.Errorf("invalid retry attempts: %d", c.Backend.Retry.MaxAttempts)
	}
	switch c.Session.Store {
	case SessionStoreSQLite, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("invalid session store: %q", c.Session.Store)
	}
	if c.Location.Interval <= 0 {
		return fmt.Errorf("invalid location interval: %s", c.Location.Interval)
	}
	if c.Journal.Retention < 0 {
		return fmt.Errorf("invalid journal retention: %s", c.Journal.Retention)
	}
	if c.Journal.Retention > 0 && c.Journal.PurgeInterval <= 0 {
		return fmt.Errorf("invalid journal purge interval: %s", c.Journal.PurgeInterval)
	}
	return nil
}

func compact(list []string) []string {
	out := list[:0]
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Package config loads client settings from defaults, a YAML file, UBEU_*
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/ubeu-platform/ubeu-go/internal/session"
	"github.com/ubeu-platform/ubeu-go/internal/types"
	"golang.org/x/time/rate"
)

const (
	defaultPrefix    = "UBEU_"
	defaultDelimiter = "."
	configFileFlag   = "config"

	// DefaultConfigFile is read when no --config flag is given
	DefaultConfigFile = "ubeu.yaml"
)

// Redis locates the shared session store
type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Key      string `koanf:"key"`
}

// RateLimit throttles outgoing attempts. A zero RPS disables limiting.
type RateLimit struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// Config is the full set of loadable settings
type Config struct {
	Client types.Config `koanf:",squash"`

	Token       string    `koanf:"token"`
	SessionFile string    `koanf:"sessionfile"`
	Redis       Redis     `koanf:"redis"`
	RateLimit   RateLimit `koanf:"ratelimit"`
	Metrics     string    `koanf:"metrics"`
	SentryDSN   string    `koanf:"sentrydsn"`
	LogFormat   string    `koanf:"logformat"`
}

// Default returns a config with every default filled in
func Default() *Config {
	return &Config{
		Client: types.Config{
			BaseURL:     types.DefaultBaseURL,
			Timeout:     types.DefaultTimeout,
			MaxRetries:  types.DefaultMaxRetries,
			Environment: types.EnvironmentDevelopment,
		},
		Redis:     Redis{Key: session.DefaultRedisKey},
		LogFormat: "tint",
	}
}

// FlagSet returns the flags understood by Load
func FlagSet() *pflag.FlagSet {
	d := Default()
	flagSet := pflag.NewFlagSet("ubeu", pflag.ContinueOnError)
	flagSet.String(configFileFlag, DefaultConfigFile, "YAML config file")
	flagSet.String("baseurl", d.Client.BaseURL, "Base URL of the UBeU API")
	flagSet.Duration("timeout", d.Client.Timeout, "Timeout of a single HTTP attempt")
	flagSet.Int("maxretries", d.Client.MaxRetries, "Retries after the first attempt")
	flagSet.Bool("debug", false, "Enable debug logging")
	flagSet.String("environment", d.Client.Environment, "Deployment environment (development, staging, production)")
	flagSet.String("token", "", "Bearer token to authenticate with")
	flagSet.String("sessionfile", "", "File the session is persisted to")
	flagSet.String("redis.addr", "", "Redis address for shared session storage")
	flagSet.String("redis.key", d.Redis.Key, "Redis key the session is stored under")
	flagSet.Float64("ratelimit.rps", 0, "Maximum attempts per second (0 disables)")
	flagSet.Int("ratelimit.burst", 1, "Rate limiter burst size")
	flagSet.String("metrics", "", "Address to serve Prometheus metrics on")
	flagSet.String("sentrydsn", "", "Sentry DSN for error reporting")
	flagSet.String("logformat", d.LogFormat, "Log format (tint, json, logrus)")
	return flagSet
}

// Load layers the config sources. flags may be nil; a missing config file is
// not an error.
func Load(flags *pflag.FlagSet) (*Config, error) {
	ko := koanf.New(defaultDelimiter)

	if err := loadFromFile(ko, resolveConfigFile(flags)); err != nil {
		return nil, errors.Wrap(err, "failed to load config file")
	}

	if err := loadFromEnv(ko); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	if flags != nil {
		if err := ko.Load(posflag.Provider(flags, defaultDelimiter, ko), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	cfg := Default()
	if err := ko.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{}); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Client.BaseURL == "" {
		return errors.New("baseurl is required")
	}
	if c.Client.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", c.Client.Timeout)
	}
	if c.Client.MaxRetries < 0 {
		return errors.Errorf("maxretries must not be negative, got %d", c.Client.MaxRetries)
	}
	if c.RateLimit.RPS < 0 {
		return errors.Errorf("ratelimit.rps must not be negative, got %v", c.RateLimit.RPS)
	}
	switch c.LogFormat {
	case "tint", "json", "logrus":
	default:
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Persister returns the session persister selected by the config, or nil
// when sessions are kept in memory only. Redis wins over a session file.
// The Redis persister owns its connection pool and is released by Close.
func (c *Config) Persister() session.Persister {
	switch {
	case c.Redis.Addr != "":
		client := redis.NewClient(&redis.Options{
			Addr:        c.Redis.Addr,
			Password:    c.Redis.Password,
			DB:          c.Redis.DB,
			DialTimeout: 5 * time.Second,
		})
		return session.NewRedisPersister(client, c.Redis.Key)
	case c.SessionFile != "":
		return session.NewFilePersister(c.SessionFile)
	default:
		return nil
	}
}

// Limiter returns the attempt rate limiter, or nil when limiting is disabled
func (c *Config) Limiter() *rate.Limiter {
	if c.RateLimit.RPS <= 0 {
		return nil
	}
	burst := c.RateLimit.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit.RPS), burst)
}

func resolveConfigFile(flags *pflag.FlagSet) string {
	if flags != nil {
		if path, err := flags.GetString(configFileFlag); err == nil && path != "" {
			return path
		}
	}
	if path := os.Getenv(defaultPrefix + "CONFIG"); path != "" {
		return path
	}
	return DefaultConfigFile
}

func loadFromFile(ko *koanf.Koanf, path string) error {
	if err := ko.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func loadFromEnv(ko *koanf.Koanf) error {
	e := env.ProviderWithValue(defaultPrefix, defaultDelimiter, func(rawKey string, rawValue string) (string, interface{}) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(rawKey, defaultPrefix)), "_", defaultDelimiter)
		if key == configFileFlag {
			return "", nil
		}
		return key, rawValue
	})
	return ko.Load(e, nil)
}

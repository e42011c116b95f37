// Package config loads the service configuration. Values are layered, later
// sources winning: built-in defaults, a TOML file, a .env file, BOOKSHELF_*
// environment variables and finally command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/aoideee/bookshelf-api/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Environment variable names.
const (
	EnvPort            = "BOOKSHELF_PORT"
	EnvEnvironment     = "BOOKSHELF_ENV"
	EnvStorage         = "BOOKSHELF_STORAGE"
	EnvDBDSN           = "BOOKSHELF_DB_DSN"
	EnvLimiterEnabled  = "BOOKSHELF_LIMITER_ENABLED"
	EnvLimiterRPS      = "BOOKSHELF_LIMITER_RPS"
	EnvLimiterBurst    = "BOOKSHELF_LIMITER_BURST"
	EnvLogLevel        = "BOOKSHELF_LOG_LEVEL"
	EnvLogFormat       = "BOOKSHELF_LOG_FORMAT"
	EnvShutdownTimeout = "BOOKSHELF_SHUTDOWN_TIMEOUT"
)

// Config holds all the values that can be tweaked at startup.
type Config struct {
	Port            int            `toml:"port" validate:"min=1,max=65535"`
	Environment     string         `toml:"env" validate:"oneof=development staging production"`
	Storage         string         `toml:"storage" validate:"oneof=memory postgres"`
	ShutdownTimeout string         `toml:"shutdown_timeout" validate:"required"`
	DB              DBConfig       `toml:"db"`
	Limiter         LimiterConfig  `toml:"limiter"`
	Log             logging.Config `toml:"log"`
}

// DBConfig configures the PostgreSQL connection pool.
type DBConfig struct {
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"min=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"min=0"`
	MaxIdleTime  string `toml:"max_idle_time"`
}

// LimiterConfig configures the per-client token bucket.
type LimiterConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps" validate:"gt=0"`
	Burst   int     `toml:"burst" validate:"gt=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port:            9000,
		Environment:     "development",
		Storage:         StorageMemory,
		ShutdownTimeout: "20s",
		DB: DBConfig{
			DSN:          "",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxIdleTime:  "15m",
		},
		Limiter: LimiterConfig{
			Enabled: false,
			RPS:     2,
			Burst:   4,
		},
		Log: logging.Config{
			Level:  logging.LevelInfo,
			Format: logging.FormatText,
		},
	}
}

// ShutdownTimeoutDuration parses and returns the shutdown timeout as a time.Duration.
// Validate rejects unparsable values; on an unvalidated Config a bad value yields 0.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// MaxIdleTimeDuration parses and returns the pool idle timeout as a time.Duration.
// Validate rejects unparsable values; an empty or bad value yields 0, which
// database/sql treats as no idle limit.
func (c *DBConfig) MaxIdleTimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxIdleTime)
	return d
}

// Load builds the configuration from args (without the program name).
// Usage output for bad flags is written to output.
func Load(args []string, output io.Writer) (*Config, error) {
	flags := flag.NewFlagSet("bookshelf", flag.ContinueOnError)
	flags.SetOutput(output)

	defaults := Default()
	configPath := flags.String("config", "", "Path to a TOML configuration file")
	envFile := flags.String("env-file", ".env", "Path to a .env file (ignored when missing)")
	port := flags.Int("port", defaults.Port, "Server port")
	environment := flags.String("env", defaults.Environment, "Environment (development|staging|production)")
	storage := flags.String("storage", defaults.Storage, "Book storage (memory|postgres)")
	dsn := flags.String("db-dsn", defaults.DB.DSN, "PostgreSQL DSN")
	limiterEnabled := flags.Bool("limiter-enabled", defaults.Limiter.Enabled, "Enable rate limiter")
	limiterRPS := flags.Float64("limiter-rps", defaults.Limiter.RPS, "Rate limiter maximum requests per second")
	limiterBurst := flags.Int("limiter-burst", defaults.Limiter.Burst, "Rate limiter maximum burst")
	logLevel := flags.String("log-level", string(defaults.Log.Level), "Log level (debug|info|warn|error)")
	logFormat := flags.String("log-format", string(defaults.Log.Format), "Log format (text|json)")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if *configPath != "" {
		if err := cfg.loadFile(*configPath); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(*envFile); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "env":
			cfg.Environment = *environment
		case "storage":
			cfg.Storage = *storage
		case "db-dsn":
			cfg.DB.DSN = *dsn
		case "limiter-enabled":
			cfg.Limiter.Enabled = *limiterEnabled
		case "limiter-rps":
			cfg.Limiter.RPS = *limiterRPS
		case "limiter-burst":
			cfg.Limiter.Burst = *limiterBurst
		case "log-level":
			cfg.Log.Level = logging.Level(*logLevel)
		case "log-format":
			cfg.Log.Format = logging.Format(*logFormat)
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if c.DB.MaxIdleTime != "" {
		if _, err := time.ParseDuration(c.DB.MaxIdleTime); err != nil {
			return fmt.Errorf("invalid db.max_idle_time: %w", err)
		}
	}
	if c.Storage == StoragePostgres && c.DB.DSN == "" {
		return errors.New("invalid config: db.dsn is required when storage is postgres")
	}
	return nil
}

// loadFile overlays the TOML file at path onto c. Keys missing from the
// file keep their current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvEnvironment); v != "" {
		c.Environment = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv(EnvLimiterEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLimiterEnabled, err)
		}
		c.Limiter.Enabled = enabled
	}
	if v := os.Getenv(EnvLimiterRPS); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLimiterRPS, err)
		}
		c.Limiter.RPS = rps
	}
	if v := os.Getenv(EnvLimiterBurst); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLimiterBurst, err)
		}
		c.Limiter.Burst = burst
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = logging.Level(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = logging.Format(v)
	}
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	return nil
}

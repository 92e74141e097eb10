package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// Config holds the process-wide settings. It is read once at startup and
// never mutated afterwards.
type Config struct {
	DatabaseURL     string        `yaml:"database_url" env:"DATABASE_URL" env-required:"true" env-description:"Postgres connection string"`
	BrainURL        string        `yaml:"brain_url" env:"BRAIN_URL" env-default:"http://localhost:8000" env-description:"prediction service base URL"`
	Port            string        `yaml:"port" env:"PORT" env-default:"3000"`
	Env             string        `yaml:"env" env:"ENV" env-default:"dev"`
	BrainTimeout    time.Duration `yaml:"brain_timeout" env:"BRAIN_TIMEOUT" env-default:"10s"`
	StaticDir       string        `yaml:"static_dir" env:"STATIC_DIR" env-default:"public"`
	DBMaxOpenConns  int           `yaml:"db_max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Load reads settings from an optional YAML file and the environment.
// Variables from a .env file in the working directory are applied first
// without overriding anything already set.
// Priority for the file path: -config flag > CONFIG_PATH > none.
func Load(args []string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	path, err := fetchConfigPath(args)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("DATABASE_URL must be set")
	case c.BrainURL == "":
		return errors.New("BRAIN_URL must not be empty")
	case c.Port == "":
		return errors.New("PORT must not be empty")
	case c.BrainTimeout <= 0:
		return fmt.Errorf("BRAIN_TIMEOUT must be positive, got %s", c.BrainTimeout)
	}
	return nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func fetchConfigPath(args []string) (string, error) {
	var res string

	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.StringVar(&res, "config", "", "path to config file")
	if err := flags.Parse(args); err != nil {
		return "", err
	}

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res, nil
}

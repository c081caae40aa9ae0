package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	DBPath     string
	ConfigPath string // Path to the YAML config file
	SecretKey  string // Signs CSRF tokens; must be stable across restarts
	Addr       string // Overrides ServerConfig.Addr when set
}

// ServerConfig holds HTTP server tuning (from YAML)
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CSRFTTL      time.Duration `yaml:"csrf_ttl"`
}

// DefaultServerConfig is used when no YAML file exists.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		CSRFTTL:      12 * time.Hour,
	}
}

// LoadDotEnv populates the environment from a .env file if one exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// GetAppConfig reads basic infrastructure settings from environment variables.
func GetAppConfig() (AppConfig, error) {
	dbPath := os.Getenv("DB_PATH")
	configPath := os.Getenv("CONFIG_PATH")

	// Set defaults if not provided
	if dbPath == "" {
		dbPath = "./local-data/cafes.db"
	}
	if configPath == "" {
		configPath = "config.yaml"
	}

	return AppConfig{
		DBPath:     dbPath,
		ConfigPath: configPath,
		SecretKey:  os.Getenv("SECRET_KEY"),
		Addr:       os.Getenv("ADDR"),
	}, nil
}

// RequireSecret fails when no SECRET_KEY was configured.
func (c AppConfig) RequireSecret() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY environment variable is required")
	}
	return nil
}

// LoadServerConfig reads the YAML file on top of the defaults.
// A missing file is not an error.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if cfg.CSRFTTL <= 0 {
		return cfg, fmt.Errorf("csrf_ttl must be positive, got %s", cfg.CSRFTTL)
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Type is sqlite, postgres, mysql or memory
	Type           string `yaml:"type"`
	Path           string `yaml:"path"`
	URL            string `yaml:"url"`
	MigrationsPath string `yaml:"migrations_path"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	CSRFSecret      string        `yaml:"csrf_secret"`
	SessionDuration time.Duration `yaml:"session_duration"`
	LoginRateLimit  int           `yaml:"login_rate_limit"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`
}

// BootstrapConfig names an admin account created on startup when missing
type BootstrapConfig struct {
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	AdminName     string `yaml:"admin_name"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from defaults, an optional .env file, an optional
// YAML file and environment variables, in that order.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads the same sources as Load but only checks the database
// settings. The backup tool uses it.
func LoadDatabase() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateDatabase(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := defaults()

	path := getEnv("CONFIG_PATH", "config.yaml")
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: "./daycare.db",
		},
		Auth: AuthConfig{
			SessionDuration: 24 * time.Hour,
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Database.Type = getEnv("DATABASE_TYPE", c.Database.Type)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Database.MigrationsPath)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.CSRFSecret = getEnv("CSRF_SECRET", c.Auth.CSRFSecret)
	c.Auth.SessionDuration = getEnvAsDuration("SESSION_DURATION", c.Auth.SessionDuration)
	c.Auth.LoginRateLimit = getEnvAsInt("LOGIN_RATE_LIMIT", c.Auth.LoginRateLimit)
	c.Auth.LoginRateWindow = getEnvAsDuration("LOGIN_RATE_WINDOW", c.Auth.LoginRateWindow)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Bootstrap.AdminEmail = getEnv("ADMIN_EMAIL", c.Bootstrap.AdminEmail)
	c.Bootstrap.AdminPassword = getEnv("ADMIN_PASSWORD", c.Bootstrap.AdminPassword)
	c.Bootstrap.AdminName = getEnv("ADMIN_NAME", c.Bootstrap.AdminName)
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.CSRFSecret == "" {
		c.Auth.CSRFSecret = c.Auth.JWTSecret
	}
	if c.Bootstrap.AdminEmail != "" && c.Bootstrap.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}
	if c.Auth.SessionDuration <= 0 {
		return errors.New("session duration must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch strings.ToLower(c.Database.Type) {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for database type %s", c.Database.Type)
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

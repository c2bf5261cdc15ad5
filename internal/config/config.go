package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Health     HealthConfig     `yaml:"health"`
	Downstream DownstreamConfig `yaml:"downstream"`
	Database   DatabaseConfig   `yaml:"database"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Otel       OtelConfig       `yaml:"otel"`
	Log        LogConfig        `yaml:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// ServerConfig contains HTTP edge settings
type ServerConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// HealthConfig contains gRPC health server settings
type HealthConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ServiceConfig locates one downstream service
type ServiceConfig struct {
	BaseURL   string `yaml:"base_url"`
	HealthURL string `yaml:"health_url"`
}

// DownstreamConfig contains the inventory, rental and payment endpoints
type DownstreamConfig struct {
	Cars    ServiceConfig `yaml:"cars"`
	Rental  ServiceConfig `yaml:"rental"`
	Payment ServiceConfig `yaml:"payment"`
	Timeout time.Duration `yaml:"timeout"`
}

// DatabaseConfig contains PostgreSQL connection settings for the failure journal
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// KafkaConfig contains failure event settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// OtelConfig contains tracing exporter settings
type OtelConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	URLPath     string `yaml:"url_path"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (with seconds)
type SchedulerConfig struct {
	ReconcileFailures  string `yaml:"reconcile_failures"`
	ProbeDownstream    string `yaml:"probe_downstream"`
	ReconcileBatchSize int    `yaml:"reconcile_batch_size"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory, when present, is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	if err := cfg.overrideWithEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() error {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &c.Server.Port); err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
	}
	if val := os.Getenv("HEALTH_PORT"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &c.Health.Port); err != nil {
			return fmt.Errorf("HEALTH_PORT: %w", err)
		}
	}

	// Downstream
	if val := os.Getenv("CARS_URL"); val != "" {
		c.Downstream.Cars.BaseURL = val
	}
	if val := os.Getenv("RENTAL_URL"); val != "" {
		c.Downstream.Rental.BaseURL = val
	}
	if val := os.Getenv("PAYMENT_URL"); val != "" {
		c.Downstream.Payment.BaseURL = val
	}
	if val := os.Getenv("DOWNSTREAM_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("DOWNSTREAM_TIMEOUT: %w", err)
		}
		c.Downstream.Timeout = d
	}

	// Database
	if val := os.Getenv("DB_ENABLED"); val != "" {
		c.Database.Enabled = val == "true" || val == "1"
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &c.Database.Port); err != nil {
			return fmt.Errorf("DB_PORT: %w", err)
		}
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Kafka
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = splitList(val)
	}
	if val := os.Getenv("KAFKA_TOPIC"); val != "" {
		c.Kafka.Topic = val
	}

	// OpenTelemetry
	if val := os.Getenv("OTEL_ENDPOINT"); val != "" {
		c.Otel.Endpoint = val
		c.Otel.Enabled = true
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	return nil
}

// Validate fills defaults and checks if the configuration is valid
func (c *Config) Validate() error {
	c.setDefaults()

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Health.Port <= 0 || c.Health.Port > 65535 {
		return fmt.Errorf("invalid health port: %d", c.Health.Port)
	}
	if c.Health.Port == c.Server.Port && c.Health.Host == c.Server.Host {
		return fmt.Errorf("health port %d collides with server port", c.Health.Port)
	}

	// Downstream validation
	services := map[string]ServiceConfig{
		"cars":    c.Downstream.Cars,
		"rental":  c.Downstream.Rental,
		"payment": c.Downstream.Payment,
	}
	for name, svc := range services {
		if err := validateURL(svc.BaseURL); err != nil {
			return fmt.Errorf("downstream %s base_url: %w", name, err)
		}
		if svc.HealthURL != "" {
			if err := validateURL(svc.HealthURL); err != nil {
				return fmt.Errorf("downstream %s health_url: %w", name, err)
			}
		}
	}
	if c.Downstream.Timeout <= 0 {
		return fmt.Errorf("invalid downstream timeout: %s", c.Downstream.Timeout)
	}

	// Database validation
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// OpenTelemetry validation
	if c.Otel.Enabled && c.Otel.Endpoint == "" {
		return fmt.Errorf("otel endpoint is required when tracing is enabled")
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Health.Port == 0 {
		c.Health.Port = c.Server.Port + 1
	}
	if c.Downstream.Timeout == 0 {
		c.Downstream.Timeout = 5 * time.Second
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "rental-gateway.best-effort-failures"
	}
	if c.Otel.ServiceName == "" {
		c.Otel.ServiceName = "rental-gateway"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileFailures == "" {
		c.Scheduler.ReconcileFailures = "0 */15 * * * *" // Every 15 minutes
	}
	if c.Scheduler.ProbeDownstream == "" {
		c.Scheduler.ProbeDownstream = "*/30 * * * * *" // Every 30 seconds
	}
	if c.Scheduler.ReconcileBatchSize == 0 {
		c.Scheduler.ReconcileBatchSize = 100
	}
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHealthAddress returns the gRPC health server address
func (c *Config) GetHealthAddress() string {
	return fmt.Sprintf("%s:%d", c.Health.Host, c.Health.Port)
}

// KafkaEnabled reports whether failure events are published
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
	"licensedesk.com/licensedesk/core"
	licensing "licensedesk.com/licensedesk/licensing/core"
)

const (
	EnvPrefix   = "LICENSEDESK"
	FileEnvName = "LICENSEDESK_CONFIG_FILE"
)

type Config struct {
	Environment   string              `yaml:"environment" envconfig:"ENVIRONMENT"`
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Database      DatabaseConfig      `yaml:"database" envconfig:"DATABASE"`
	Auth          AuthConfig          `yaml:"auth" envconfig:"AUTH"`
	Licensing     LicensingConfig     `yaml:"licensing" envconfig:"LICENSING"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Notifications NotificationsConfig `yaml:"notifications" envconfig:"NOTIFICATIONS"`
	Backup        BackupConfig        `yaml:"backup" envconfig:"BACKUP"`
}

type ServerConfig struct {
	Addr            string          `yaml:"addr" envconfig:"ADDR"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig limits the public check/activate routes per client IP.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

type DatabaseConfig struct {
	Driver         string `yaml:"driver" envconfig:"DRIVER"`
	DSN            string `yaml:"dsn" envconfig:"DSN"`
	MaxConnections int    `yaml:"max_connections" envconfig:"MAX_CONNECTIONS"`
	LogLevel       string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	// SSMParameter names a SecureString parameter holding the DSN.
	SSMParameter string `yaml:"ssm_parameter" envconfig:"SSM_PARAMETER"`
}

type AuthConfig struct {
	Secret        string        `yaml:"secret" envconfig:"SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl" envconfig:"TOKEN_TTL"`
	CookieName    string        `yaml:"cookie_name" envconfig:"COOKIE_NAME"`
	AdminUsername string        `yaml:"admin_username" envconfig:"ADMIN_USERNAME"`
	AdminPassword string        `yaml:"admin_password" envconfig:"ADMIN_PASSWORD"`
}

type LicensingConfig struct {
	ProgramNamePolicy string `yaml:"program_name_policy" envconfig:"PROGRAM_NAME_POLICY"`
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
}

type NotificationsConfig struct {
	SlackToken        string   `yaml:"slack_token" envconfig:"SLACK_TOKEN"`
	SlackInfoChannel  string   `yaml:"slack_info_channel" envconfig:"SLACK_INFO_CHANNEL"`
	SlackErrorChannel string   `yaml:"slack_error_channel" envconfig:"SLACK_ERROR_CHANNEL"`
	EmailFrom         string   `yaml:"email_from" envconfig:"EMAIL_FROM"`
	EmailTo           []string `yaml:"email_to" envconfig:"EMAIL_TO"`
}

type BackupConfig struct {
	Bucket string `yaml:"bucket" envconfig:"BUCKET"`
	Prefix string `yaml:"prefix" envconfig:"PREFIX"`
}

func Default() Config {
	return Config{
		Environment: "development",
		Server: ServerConfig{
			Addr:            ":8090",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:5173"},
			RateLimit:       RateLimitConfig{Enabled: true, RPS: 5, Burst: 20},
		},
		Database: DatabaseConfig{
			Driver:         core.DriverSQLite,
			DSN:            "licenses.db",
			MaxConnections: 10,
			LogLevel:       "warn",
		},
		Auth: AuthConfig{
			TokenTTL:   7 * 24 * time.Hour,
			CookieName: "licensedesk.session",
		},
		Licensing: LicensingConfig{ProgramNamePolicy: string(licensing.ProgramNameAtCreation)},
		Logging:   LoggingConfig{Level: "info"},
		Backup:    BackupConfig{Prefix: "licenses/"},
	}
}

// Load reads .env, then the optional YAML file named by
// LICENSEDESK_CONFIG_FILE, then LICENSEDESK_* environment variables.
// Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(FileEnvName); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case core.DriverSQLite, core.DriverMySQL, core.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" && c.Database.SSMParameter == "" {
		errs = append(errs, errors.New("database dsn or ssm parameter is required"))
	}
	if _, err := licensing.ParseProgramNamePolicy(c.Licensing.ProgramNamePolicy); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		errs = append(errs, errors.New("auth secret is required"))
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RPS <= 0 {
		errs = append(errs, errors.New("rate limit rps must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) ProgramNamePolicy() licensing.ProgramNamePolicy {
	policy, _ := licensing.ParseProgramNamePolicy(c.Licensing.ProgramNamePolicy)
	return policy
}

// IsProduction selects JSON logs and gin release mode.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "production", "staging":
		return true
	}
	return false
}

func (c *Config) DatabaseOptions() core.Options {
	return core.Options{
		Driver:         c.Database.Driver,
		DSN:            c.Database.DSN,
		MaxConnections: c.Database.MaxConnections,
		LogLevel:       core.ParseLogLevel(c.Database.LogLevel),
	}
}

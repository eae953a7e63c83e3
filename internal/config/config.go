package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`

		CORSOrigins []string `yaml:"cors_origins"` // empty allows any origin
	} `yaml:"server"`

	Database struct {
		Driver                 string `yaml:"driver"` // postgres, mysql
		DSN                    string `yaml:"url"`
		MaxOpenConns           int    `yaml:"max_open_conns"`
		MaxIdleConns           int    `yaml:"max_idle_conns"`
		ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
		AutoMigrate            bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Secrets struct {
		Key string `yaml:"key"` // empty disables encryption of stored credentials
	} `yaml:"secrets"`

	Redis struct {
		Address  string `yaml:"address"` // empty uses the in-process lock
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		AdminEmail   string `yaml:"admin_email"`
	} `yaml:"email"`

	Sync struct {
		Enabled                   bool   `yaml:"enabled"`
		Schedule                  string `yaml:"schedule"` // cron expression
		FetchTimeoutSeconds       int    `yaml:"fetch_timeout_seconds"`
		TokenRefreshBufferSeconds int    `yaml:"token_refresh_buffer_seconds"`
		LockTTLSeconds            int    `yaml:"lock_ttl_seconds"`
	} `yaml:"sync"`

	OAuth struct {
		StateSecret string                   `yaml:"state_secret"`
		Providers   map[string]OAuthProvider `yaml:"providers"`
	} `yaml:"oauth"`

	Platforms struct {
		Feeds []FeedConfig `yaml:"feeds"`
	} `yaml:"platforms"`
}

// OAuthProvider is the client registration with one OAuth provider.
type OAuthProvider struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

// FeedConfig registers a job board that exposes a JSON candidate feed.
type FeedConfig struct {
	Name           string `yaml:"name"`
	BaseURL        string `yaml:"base_url"`
	TokenPrefix    string `yaml:"token_prefix"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

var AppConfig *Config

// Load reads .env, the YAML file and environment overrides, in that order of
// increasing precedence, then applies defaults and validates.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath
	}

	if err := readFile(configPath, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads the configuration into AppConfig and exits on failure.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func readFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Env, "SERVER_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Secrets.Key, "SECRETS_KEY")
	setString(&cfg.Redis.Address, "REDIS_ADDRESS")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.OAuth.StateSecret, "OAUTH_STATE_SECRET")

	if v, ok := os.LookupEnv("SYNC_ENABLED"); ok {
		cfg.Sync.Enabled, _ = strconv.ParseBool(v)
	}
	setString(&cfg.Sync.Schedule, "SYNC_SCHEDULE")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 5
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Sync.Schedule == "" {
		cfg.Sync.Schedule = "0 */6 * * *"
	}
	if cfg.Sync.FetchTimeoutSeconds == 0 {
		cfg.Sync.FetchTimeoutSeconds = 30
	}
	if cfg.Sync.TokenRefreshBufferSeconds == 0 {
		cfg.Sync.TokenRefreshBufferSeconds = 300
	}
	if cfg.Sync.LockTTLSeconds == 0 {
		cfg.Sync.LockTTLSeconds = 30
	}
	if cfg.OAuth.StateSecret == "" {
		cfg.OAuth.StateSecret = cfg.JWT.Secret
	}
	for i := range cfg.Platforms.Feeds {
		if cfg.Platforms.Feeds[i].TimeoutSeconds == 0 {
			cfg.Platforms.Feeds[i].TimeoutSeconds = 20
		}
	}
}

// Validate checks the settings the application cannot start without.
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		problems = append(problems, "database.url is required")
	}
	if c.JWT.Secret == "" {
		problems = append(problems, "jwt.secret is required")
	}
	for _, feed := range c.Platforms.Feeds {
		if feed.Name == "" || feed.BaseURL == "" {
			problems = append(problems, "platforms.feeds entries need name and base_url")
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Sync.FetchTimeoutSeconds) * time.Second
}

func (c *Config) TokenRefreshBuffer() time.Duration {
	return time.Duration(c.Sync.TokenRefreshBufferSeconds) * time.Second
}

func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Sync.LockTTLSeconds) * time.Second
}

func (c *Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.Database.ConnMaxLifetimeMinutes) * time.Minute
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

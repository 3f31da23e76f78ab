package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     int    `envconfig:"APP_PORT" default:"8080"`
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Sweep    SweepConfig
	Referral ReferralConfig
	Internal InternalConfig
}

// database configuration
type DBConfig struct {
	DSN            string        `envconfig:"DATABASE_URL" required:"true"`
	MaxConns       int           `envconfig:"DB_MAX_CONNS" default:"20"`
	MaxConnLife    time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// redis configuration (sweep lock, notification channel)
type RedisConfig struct {
	Addr                string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password            string `envconfig:"REDIS_PASSWORD" default:""`
	DB                  int    `envconfig:"REDIS_DB" default:"0"`
	NotificationChannel string `envconfig:"REDIS_NOTIFICATION_CHANNEL" default:"notifications"`
}

// JWT configuration
type JWTConfig struct {
	Secret         string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"1h"`
}

// CORS configuration
type CORSConfig struct {
	TrustedOrigins []string `envconfig:"CORS_TRUSTED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// deadline sweep configuration
type SweepConfig struct {
	Enabled  bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"SWEEP_LOCK_TTL" default:"4m"`
	LockKey  string        `envconfig:"SWEEP_LOCK_KEY" default:"referd:sweep:lock"`
}

// referral defaults
type ReferralConfig struct {
	DefaultCurrency string `envconfig:"REFERRAL_DEFAULT_CURRENCY" default:"USD"`
}

// internal API (payment gateway callbacks)
type InternalConfig struct {
	Token string `envconfig:"INTERNAL_API_TOKEN" required:"true"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Env)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	if c.DB.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if len(c.Internal.Token) < 16 {
		return fmt.Errorf("INTERNAL_API_TOKEN must be at least 16 characters")
	}
	if c.Sweep.Enabled {
		if c.Sweep.Interval < time.Second {
			return fmt.Errorf("SWEEP_INTERVAL must be at least 1s")
		}
		if c.Sweep.LockTTL < time.Second {
			return fmt.Errorf("SWEEP_LOCK_TTL must be at least 1s")
		}
	}
	if len(c.Referral.DefaultCurrency) != 3 {
		return fmt.Errorf("REFERRAL_DEFAULT_CURRENCY must be a 3-letter code")
	}
	if len(c.CORS.TrustedOrigins) == 0 {
		return fmt.Errorf("at least one trusted origin must be specified")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GetCORSOrigins returns the list of trusted CORS origins
func (c *Config) GetCORSOrigins() []string {
	origins := make([]string, 0, len(c.CORS.TrustedOrigins))
	for _, origin := range c.CORS.TrustedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

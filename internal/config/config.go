package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Google    GoogleConfig
	Session   SessionConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// IsProduction reports whether the service runs with production settings.
func (s ServerConfig) IsProduction() bool {
	return strings.HasPrefix(strings.ToLower(s.Environment), "prod")
}

type DatabaseConfig struct {
	Driver string // postgres | sqlite
	DSN    string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Issuer       string
	// Timeout bounds the whole provider round trip (exchange + profile).
	Timeout time.Duration
}

// Enabled reports whether Google sign-in has enough configuration to run.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}

type SessionConfig struct {
	Secret      string
	TTL         time.Duration
	CookieName  string
	Secure      bool
	AttemptTTL  time.Duration
	AttemptName string
}

type PasswordConfig struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:admin.db?_foreign_keys=on")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("GOOGLE_ISSUER", "https://accounts.google.com")
	v.SetDefault("GOOGLE_TIMEOUT", 10)
	v.SetDefault("SESSION_TTL", 480)
	v.SetDefault("SESSION_COOKIE_NAME", "admin_session")
	v.SetDefault("SESSION_ATTEMPT_TTL", 10)
	v.SetDefault("SESSION_ATTEMPT_COOKIE_NAME", "oauth_attempt")
	v.SetDefault("PASSWORD_ARGON_MEMORY", 64*1024)
	v.SetDefault("PASSWORD_ARGON_ITERATIONS", 1)
	v.SetDefault("PASSWORD_ARGON_PARALLELISM", 2)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("LOG_LEVEL", "info")

	parallelism := v.GetUint("PASSWORD_ARGON_PARALLELISM")
	if parallelism > math.MaxUint8 {
		return nil, fmt.Errorf("PASSWORD_ARGON_PARALLELISM must be at most %d, got %d", math.MaxUint8, parallelism)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
			Issuer:       v.GetString("GOOGLE_ISSUER"),
			Timeout:      time.Duration(v.GetInt("GOOGLE_TIMEOUT")) * time.Second,
		},
		Session: SessionConfig{
			Secret:      v.GetString("SESSION_SECRET"),
			TTL:         time.Duration(v.GetInt("SESSION_TTL")) * time.Minute,
			CookieName:  v.GetString("SESSION_COOKIE_NAME"),
			Secure:      v.GetBool("SESSION_COOKIE_SECURE"),
			AttemptTTL:  time.Duration(v.GetInt("SESSION_ATTEMPT_TTL")) * time.Minute,
			AttemptName: v.GetString("SESSION_ATTEMPT_COOKIE_NAME"),
		},
		Password: PasswordConfig{
			Memory:      v.GetUint32("PASSWORD_ARGON_MEMORY"),
			Iterations:  v.GetUint32("PASSWORD_ARGON_ITERATIONS"),
			Parallelism: uint8(parallelism),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.Session.Secret == "" {
		if c.Server.IsProduction() {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		// development only, the value is public
		c.Session.Secret = "dev-insecure-session-secret-change-me"
	}
	if c.Password.Parallelism == 0 || c.Password.Iterations == 0 || c.Password.Memory == 0 {
		return fmt.Errorf("argon2id parameters must be positive")
	}
	return nil
}

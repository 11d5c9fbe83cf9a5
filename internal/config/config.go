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

// Config is loaded once at start-up and handed to every component.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Webhooks WebhookConfig  `yaml:"webhooks"`
	Payouts  PayoutConfig   `yaml:"payouts"`
	Jobs     JobConfig      `yaml:"jobs"`
	Log      LogConfig      `yaml:"log"`

	// PublicBaseURL is where the public affiliate form is served.
	PublicBaseURL string `yaml:"public_base_url"`
}

type HTTPConfig struct {
	Addr               string        `yaml:"addr"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLDisable bool   `yaml:"ssl_disable"`
	MaxConns   int    `yaml:"max_conns"`
	// SecretID names an AWS Secrets Manager secret holding username and
	// password. Used only when User and Password are empty.
	SecretID string `yaml:"secret_id"`
}

// DSN returns URL when set, otherwise a key/value DSN built from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	var sslMode string
	if d.SSLDisable {
		sslMode = " sslmode=disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s", d.Host, d.User, d.Password, d.Name, d.Port, sslMode)
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	CookieSecure    bool          `yaml:"cookie_secure"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
}

type WebhookConfig struct {
	AdminSignupURL string        `yaml:"admin_signup_url"`
	EmailURL       string        `yaml:"email_url"`
	Timeout        time.Duration `yaml:"timeout"`
}

type PayoutConfig struct {
	Minimum           float64 `yaml:"minimum"`
	StrictTransitions bool    `yaml:"strict_transitions"`
}

type JobConfig struct {
	// AffiliateBackfillSchedule is a cron spec; empty disables the scheduled run.
	AffiliateBackfillSchedule string `yaml:"affiliate_backfill_schedule"`
	BackfillOnStart           bool   `yaml:"backfill_on_start"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:               ":8080",
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			ShutdownTimeout:    10 * time.Second,
		},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, MaxConns: 10},
		Auth: AuthConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 30 * 24 * time.Hour,
			RateLimitRPS:    5,
			RateLimitBurst:  10,
		},
		Webhooks:      WebhookConfig{Timeout: 5 * time.Second},
		Payouts:       PayoutConfig{Minimum: 50, StrictTransitions: true},
		Jobs:          JobConfig{AffiliateBackfillSchedule: "@daily", BackfillOnStart: true},
		Log:           LogConfig{Level: "info", Format: "json"},
		PublicBaseURL: "https://dashboard.commercive.co",
	}
}

// Load reads .env, then the YAML file named by CONFIG_FILE, then the
// environment. Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &cfg.HTTP.Addr)
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.HTTP.CORSAllowedOrigins = splitList(v)
	}
	str("DATABASE_URL", &cfg.Database.URL)
	str("DB_HOST", &cfg.Database.Host)
	integer("DB_PORT", &cfg.Database.Port)
	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_NAME", &cfg.Database.Name)
	boolean("DB_SSL_MODE_DISABLE", &cfg.Database.SSLDisable)
	integer("DB_MAX_CONNS", &cfg.Database.MaxConns)
	str("DB_SECRET_ID", &cfg.Database.SecretID)
	str("REDIS_URL", &cfg.Redis.URL)
	str("JWT_SECRET", &cfg.Auth.JWTSecret)
	duration("ACCESS_TOKEN_TTL", &cfg.Auth.AccessTokenTTL)
	duration("REFRESH_TOKEN_TTL", &cfg.Auth.RefreshTokenTTL)
	boolean("COOKIE_SECURE", &cfg.Auth.CookieSecure)
	float("AUTH_RATE_LIMIT_RPS", &cfg.Auth.RateLimitRPS)
	integer("AUTH_RATE_LIMIT_BURST", &cfg.Auth.RateLimitBurst)
	str("ADMIN_WEBHOOK_URL", &cfg.Webhooks.AdminSignupURL)
	str("EMAIL_WEBHOOK_URL", &cfg.Webhooks.EmailURL)
	duration("WEBHOOK_TIMEOUT", &cfg.Webhooks.Timeout)
	float("MIN_PAYOUT", &cfg.Payouts.Minimum)
	boolean("STRICT_PAYOUT_TRANSITIONS", &cfg.Payouts.StrictTransitions)
	str("AFFILIATE_BACKFILL_SCHEDULE", &cfg.Jobs.AffiliateBackfillSchedule)
	boolean("AFFILIATE_BACKFILL_ON_START", &cfg.Jobs.BackfillOnStart)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("PUBLIC_BASE_URL", &cfg.PublicBaseURL)

	return errors.Join(errs...)
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Database.URL == "" && c.Database.Name == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_NAME is required"))
	}
	if c.Payouts.Minimum < 0 {
		errs = append(errs, errors.New("MIN_PAYOUT must not be negative"))
	}
	if c.PublicBaseURL == "" {
		errs = append(errs, errors.New("PUBLIC_BASE_URL is required"))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

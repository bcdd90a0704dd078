package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv             string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	BaseURL            string        `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Email    EmailConfig `envPrefix:"EMAIL_"`
	SMS      SMSConfig   `envPrefix:"SMS_"`
	Notify   NotifyConfig
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"PG_HOST" envDefault:"localhost"`
	Port       string `env:"PG_PORT" envDefault:"5432"`
	User       string `env:"PG_USER"`
	Password   string `env:"PG_PASSWORD"`
	Name       string `env:"PG_DB"`
	SSLMode    string `env:"PG_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"chapterhouse.db"`
}

// DSN returns the postgres connection URL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Empty Host disables Redis; sessions, cache and the notification queue fall
// back to in-process implementations.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SecureCookies  bool          `env:"SECURE_COOKIES" envDefault:"false"`
}

type EmailConfig struct {
	Provider       string `env:"PROVIDER" envDefault:"console"`
	FromName       string `env:"FROM_NAME" envDefault:"Chapterhouse"`
	FromAddress    string `env:"FROM_ADDRESS" envDefault:"no-reply@chapterhouse.local"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
}

type SMSConfig struct {
	Provider           string `env:"PROVIDER" envDefault:"console"`
	TwilioAccountSID   string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber   string `env:"TWILIO_FROM_NUMBER"`
	TwilioMessagingSID string `env:"TWILIO_MESSAGING_SERVICE_SID"`
	MaxConcurrentSends int    `env:"MAX_CONCURRENT_SENDS" envDefault:"4"`
}

type NotifyConfig struct {
	Workers     int           `env:"NOTIFY_WORKERS" envDefault:"4"`
	MaxAttempts int           `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"3"`
	BlockTime   time.Duration `env:"NOTIFY_BLOCK_TIME" envDefault:"5s"`
	StaleAfter  time.Duration `env:"NOTIFY_STALE_AFTER" envDefault:"2m"`
	LocalBuffer int           `env:"NOTIFY_LOCAL_BUFFER" envDefault:"1024"`
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// Validate checks presence of the keys the selected drivers and providers need.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.User == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("PG_USER and PG_DB are required for the postgres driver"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver))
	}

	switch c.Email.Provider {
	case "console":
	case "smtp":
		if c.Email.SMTPHost == "" {
			errs = append(errs, errors.New("EMAIL_SMTP_HOST is required for the smtp provider"))
		}
	case "sendgrid":
		if c.Email.SendgridAPIKey == "" {
			errs = append(errs, errors.New("EMAIL_SENDGRID_API_KEY is required for the sendgrid provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Email.Provider))
	}

	switch c.SMS.Provider {
	case "console":
	case "twilio":
		if c.SMS.TwilioAccountSID == "" || c.SMS.TwilioAuthToken == "" {
			errs = append(errs, errors.New("SMS_TWILIO_ACCOUNT_SID and SMS_TWILIO_AUTH_TOKEN are required for the twilio provider"))
		}
		if c.SMS.TwilioFromNumber == "" && c.SMS.TwilioMessagingSID == "" {
			errs = append(errs, errors.New("SMS_TWILIO_FROM_NUMBER or SMS_TWILIO_MESSAGING_SERVICE_SID is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SMS_PROVIDER %q", c.SMS.Provider))
	}

	if c.Notify.Workers < 1 {
		errs = append(errs, errors.New("NOTIFY_WORKERS must be at least 1"))
	}
	if c.Notify.MaxAttempts < 1 {
		errs = append(errs, errors.New("NOTIFY_MAX_ATTEMPTS must be at least 1"))
	}

	return errors.Join(errs...)
}

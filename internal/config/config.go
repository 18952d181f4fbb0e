package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	BaseURL  string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// Storefront origin; payment relays redirect back here.
	StorefrontURL string   `envconfig:"STOREFRONT_URL" default:"http://localhost:5173"`
	CORSOrigins   []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	DBDriver string `envconfig:"DB_DRIVER" default:"mysql"`
	DBDSN    string `envconfig:"DB_DSN" required:"true"`
	RedisURL string `envconfig:"REDIS_URL"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	FirebaseCredentialsFile string `envconfig:"FIREBASE_CREDENTIALS_FILE"`
	RazorpayBaseURL         string `envconfig:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`

	Storage StorageConfig `envconfig:"STORAGE"`
	Mail    MailConfig    `envconfig:"MAIL"`
	SMTP    SMTPConfig    `envconfig:"SMTP"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

type StorageConfig struct {
	Driver          string `envconfig:"DRIVER" default:"local"`
	LocalDir        string `envconfig:"LOCAL_DIR" default:"./storage/uploads"`
	LocalURLPrefix  string `envconfig:"LOCAL_URL_PREFIX" default:"/uploads"`
	S3Region        string `envconfig:"S3_REGION"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Prefix        string `envconfig:"S3_PREFIX" default:"uploads"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
}

type MailConfig struct {
	Driver           string `envconfig:"DRIVER" default:"none"` // none|smtp|mailtrap
	From             string `envconfig:"FROM" default:"orders@hellocrackers.in"`
	FromName         string `envconfig:"FROM_NAME" default:"Hello Crackers"`
	MailtrapAPIURL   string `envconfig:"MAILTRAP_API_URL"`
	MailtrapAPIToken string `envconfig:"MAILTRAP_API_TOKEN"`
}

type SMTPConfig struct {
	Host          string `envconfig:"HOST" default:"localhost"`
	Port          string `envconfig:"PORT" default:"1025"`
	User          string `envconfig:"USER"`
	Pass          string `envconfig:"PASS"`
	TLSMode       string `envconfig:"TLS_MODE" default:"none"` // none|starttls|tls
	SkipVerifyTLS bool   `envconfig:"SKIP_VERIFY_TLS" default:"false"`
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown DB_DRIVER: %s", c.DBDriver)
	}
	if len(c.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Region == "" || c.Storage.S3Bucket == "" || c.Storage.S3PublicBaseURL == "" {
			return errors.New("S3 config missing: STORAGE_S3_REGION, STORAGE_S3_BUCKET, STORAGE_S3_PUBLIC_BASE_URL required")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER: %s", c.Storage.Driver)
	}
	switch c.Mail.Driver {
	case "none", "smtp":
	case "mailtrap":
		if c.Mail.MailtrapAPIURL == "" || c.Mail.MailtrapAPIToken == "" {
			return errors.New("mailtrap config missing: MAIL_MAILTRAP_API_URL, MAIL_MAILTRAP_API_TOKEN required")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER: %s", c.Mail.Driver)
	}
	switch strings.ToLower(c.SMTP.TLSMode) {
	case "none", "starttls", "tls":
	default:
		return fmt.Errorf("unknown SMTP_TLS_MODE: %s", c.SMTP.TLSMode)
	}
	return nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }

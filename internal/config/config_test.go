package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
	t.Setenv("JWT_SECRET", "fedcba9876543210fedc")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "/uploads", cfg.Storage.LocalURLPrefix)
	assert.Equal(t, "none", cfg.Mail.Driver)
	assert.Equal(t, "1025", cfg.SMTP.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadNested(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("STORAGE_S3_REGION", "ap-south-1")
	t.Setenv("STORAGE_S3_BUCKET", "hc-media")
	t.Setenv("STORAGE_S3_PUBLIC_BASE_URL", "https://cdn.example.in")
	t.Setenv("CORS_ORIGINS", "https://hellocrackers.in,https://admin.hellocrackers.in")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "hc-media", cfg.Storage.S3Bucket)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
	t.Setenv("JWT_SECRET", "fedcba9876543210fedc")
	t.Setenv("DB_DSN", "")
	require.NoError(t, os.Unsetenv("DB_DSN"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		DBDriver:      "mysql",
		DBDSN:         "user:pass@tcp(localhost:3306)/shop",
		SessionSecret: "0123456789abcdef",
		JWTSecret:     "0123456789abcdef",
		Storage:       StorageConfig{Driver: "local"},
		Mail:          MailConfig{Driver: "none"},
		SMTP:          SMTPConfig{TLSMode: "none"},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.DBDriver = "oracle"
	assert.Error(t, bad.Validate())

	bad = base
	bad.SessionSecret = "short"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Storage.Driver = "s3"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Mail.Driver = "mailtrap"
	assert.Error(t, bad.Validate())
}

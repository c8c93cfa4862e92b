package config

import (
	"fmt"
	"strconv"

	"github.com/Mrxforte/tooler/internal/envconfig"
)

type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string `validate:"required"`
	Auth         AuthConfig
	SMTP         SMTPConfig
}

type AuthConfig struct {
	Mode    string `validate:"required"`
	JWKSURL string
}

// SMTPConfig holds the mail relay settings. Credentials are required so a
// misconfigured deployment fails at startup instead of on first send.
type SMTPConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required"`
	From     string `validate:"required,email"`
}

func Load() (Config, error) {
	smtpPort, err := strconv.Atoi(envconfig.Get("SMTP_PORT", "587"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	user := envconfig.Get("EMAIL_USER", "")

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", "tooler-app"),
		Auth: AuthConfig{
			Mode:    envconfig.Get("AUTH_MODE", "firebase"),
			JWKSURL: envconfig.Get("AUTH_JWKS_URL", ""),
		},
		SMTP: SMTPConfig{
			Host:     envconfig.Get("SMTP_HOST", "smtp.gmail.com"),
			Port:     smtpPort,
			Username: user,
			Password: envconfig.Get("EMAIL_PASSWORD", ""),
			From:     envconfig.Get("EMAIL_FROM", user),
		},
	}
	return cfg, envconfig.Validate(cfg)
}

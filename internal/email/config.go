package email

import (
	"time"

	"mediamatrixhub/internal/config"
)

// SMTPConfig holds the gateway settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
	// Debug logs messages instead of sending them.
	Debug bool
}

// DefaultConfig returns the configuration of an unauthenticated relay on
// localhost:25.
func DefaultConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:    "localhost",
		Port:    25,
		Timeout: 30 * time.Second,
	}
}

func FromConfig(c config.EmailConfig) *SMTPConfig {
	cfg := DefaultConfig()
	if c.SMTPHost != "" {
		cfg.Host = c.SMTPHost
	}
	if c.SMTPPort > 0 {
		cfg.Port = c.SMTPPort
	}
	if c.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	cfg.Username = c.SMTPUsername
	cfg.Password = c.SMTPPassword
	cfg.FromEmail = c.FromEmail
	cfg.FromName = c.FromName
	cfg.Debug = c.Debug
	return cfg
}

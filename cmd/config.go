package main

import (
	"fmt"
	"strings"
	"time"
	"wa-gateway/domain"
)

const mebibyte = 1024 * 1024

type Config struct {
	AppName              string        `env:"APP_NAME,default=WA-API"`
	Host                 string        `env:"HOST,default=0.0.0.0"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	LogFormat            string        `env:"LOG_FORMAT,default=json"`
	CountryCode          string        `env:"COUNTRY_CODE,default=62"`
	TrunkPrefix          string        `env:"TRUNK_PREFIX,default=0"`
	MinPhoneDigits       int           `env:"MIN_PHONE_DIGITS,default=8"`
	MediaSendTimeout     time.Duration `env:"MEDIA_SEND_TIMEOUT,default=120s"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=5s"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=32"`
	BufferSize           int           `env:"BUFFER_SIZE,default=64"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=2s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	SessionDBPath        string        `env:"SESSION_DB_PATH,default=session.db"`
	GroupInviteComment   string        `env:"GROUP_INVITE_COMMENT"`
	JWTSecret            string        `env:"API_JWT_SECRET"`
	APIKeyHash           string        `env:"API_KEY_HASH"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	EnableAutoReply      bool          `env:"ENABLE_AUTO_REPLY,default=true"`
	MaxUploadMB          int64         `env:"MAX_UPLOAD_MB,default=100"`
	QRScale              int           `env:"QR_SCALE,default=8"`
	ConsoleQR            bool          `env:"CONSOLE_QR,default=true"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=*"`
}

func (c Config) Policy() domain.CountryCodePolicy {
	return domain.CountryCodePolicy{
		Code:        c.CountryCode,
		TrunkPrefix: c.TrunkPrefix,
		MinDigits:   c.MinPhoneDigits,
	}
}

func (c Config) MaxUploadBytes() int64 { return c.MaxUploadMB * mebibyte }

// SessionDSN points the sqlite session store at SESSION_DB_PATH with
// foreign keys on, which the store requires.
func (c Config) SessionDSN() string {
	return "file:" + c.SessionDBPath + "?_foreign_keys=on"
}

// OriginPatterns splits ALLOWED_ORIGINS on commas.
func (c Config) OriginPatterns() []string {
	var patterns []string
	for _, p := range strings.Split(c.AllowedOrigins, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// Validate catches settings that go-env accepts but the gateway cannot run
// with.
func (c Config) Validate() error {
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.BufferSize <= 0 || c.ConnectionBufferSize <= 0 {
		return fmt.Errorf("BUFFER_SIZE and CONNECTION_BUFFER_SIZE must be positive")
	}
	if c.APIKeyHash != "" && c.JWTSecret == "" {
		return fmt.Errorf("API_KEY_HASH is set but API_JWT_SECRET is empty")
	}
	return nil
}

package config

import (
	"os"
	"time"

	"github.com/authcore/authcore/pkg/logx"
)

// Config is the process-wide configuration, loaded once from the
// environment at start and shared as a read-only value thereafter.
type Config struct {
	Port string

	Mongo MongoConfig
	Auth  AuthConfig
	TOTP  TOTPConfig
	WebAuthn WebAuthnConfig

	Log logx.Config
}

// MongoConfig configures the document store connection.
type MongoConfig struct {
	URI         string
	MainDB      string
	LogsDB      string
	ConnectTimeout time.Duration
}

// AuthConfig configures the bootstrap system account.
type AuthConfig struct {
	SystemEmail    string
	SystemPassword string
}

// TOTPConfig configures the TOTP MFA engine (spec.md §4.3).
type TOTPConfig struct {
	IssuerName string
}

// WebAuthnConfig configures the WebAuthn relying party (spec.md §9:
// "built once at process start... shared as read-only").
type WebAuthnConfig struct {
	RPID     string
	RPOrigin string
	RPName   string
}

// Load reads configuration from environment variables. Unset values fall
// back to defaults suitable for local development.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MainDB:         getEnv("MONGO_MAIN_DB", "authcore-data"),
			LogsDB:         getEnv("MONGO_LOGS_DB", "authcore-logs"),
			ConnectTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			SystemEmail:    os.Getenv("SYSTEM_EMAIL"),
			SystemPassword: os.Getenv("SYSTEM_PASSWORD"),
		},
		TOTP: TOTPConfig{
			IssuerName: getEnv("TOTP_ISSUER_NAME", "authcore"),
		},
		WebAuthn: WebAuthnConfig{
			RPID:     getEnv("WEBAUTHN_RP_ID", "localhost"),
			RPOrigin: getEnv("WEBAUTHN_RP_ORIGIN", "http://localhost:8080"),
			RPName:   getEnv("WEBAUTHN_RP_NAME", "authcore"),
		},
		Log: *logx.LoadFromEnv(),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Named defaults. Base URLs point at the production provider endpoints;
// override them via environment for staging and tests.
const (
	DefaultListenAddr          = "127.0.0.1:8000"
	DefaultDBPath              = "docvision.db"
	DefaultTokenTTL            = 12 * time.Hour
	DefaultDidoxBaseURL        = "https://api2.didox.uz/v2"
	DefaultDidoxPartnerBaseURL = "https://api-partners.didox.uz/v1"
	DefaultRegosBaseURL        = "https://integration.regos.uz/gateway/out"
	DefaultDidoxTimeout        = 60 * time.Second
	DefaultRegosTimeout        = 30 * time.Second
	DefaultSignerURL           = "wss://127.0.0.1:64443/service/cryptapi"
	DefaultSignerOrigin        = "http://localhost:5173"
)

// Config holds the application configuration loaded from environment
// variables. It is constructed once at startup and injected into the
// adapters; request-handling code never reads the environment.
type Config struct {
	ListenAddr string
	DBPath     string

	// Local auth.
	JWTSecret []byte
	TokenTTL  time.Duration

	// Documents provider.
	DidoxBaseURL        string
	DidoxPartnerBaseURL string
	PartnerToken        string
	DidoxTimeout        time.Duration

	// ERP provider.
	RegosBaseURL string
	RegosToken   string
	RegosTimeout time.Duration

	// Local signer.
	SignerURL    string
	SignerOrigin string

	// Browser clients allowed by the CORS middleware.
	AllowedOrigins []string
}

// Load reads configuration from environment variables and returns a
// validated Config. DOCVISION_JWT_SECRET is required; everything else has
// a default. Provider tokens (DOCVISION_PARTNER_TOKEN, DOCVISION_REGOS_TOKEN)
// may be empty, in which case the corresponding provider calls fail at the
// provider rather than at startup.
func Load() (*Config, error) {
	secret := os.Getenv("DOCVISION_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("DOCVISION_JWT_SECRET is required")
	}

	tokenTTL, err := durationEnv("DOCVISION_TOKEN_TTL", DefaultTokenTTL)
	if err != nil {
		return nil, err
	}
	didoxTimeout, err := durationEnv("DOCVISION_DIDOX_TIMEOUT", DefaultDidoxTimeout)
	if err != nil {
		return nil, err
	}
	regosTimeout, err := durationEnv("DOCVISION_REGOS_TIMEOUT", DefaultRegosTimeout)
	if err != nil {
		return nil, err
	}

	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if v, ok := os.LookupEnv("DOCVISION_ALLOWED_ORIGINS"); ok && v != "" {
		allowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	return &Config{
		ListenAddr:          stringEnv("DOCVISION_LISTEN_ADDR", DefaultListenAddr),
		DBPath:              stringEnv("DOCVISION_DB_PATH", DefaultDBPath),
		JWTSecret:           []byte(secret),
		TokenTTL:            tokenTTL,
		DidoxBaseURL:        stringEnv("DOCVISION_DIDOX_BASE_URL", DefaultDidoxBaseURL),
		DidoxPartnerBaseURL: stringEnv("DOCVISION_DIDOX_PARTNER_BASE_URL", DefaultDidoxPartnerBaseURL),
		PartnerToken:        os.Getenv("DOCVISION_PARTNER_TOKEN"),
		DidoxTimeout:        didoxTimeout,
		RegosBaseURL:        stringEnv("DOCVISION_REGOS_BASE_URL", DefaultRegosBaseURL),
		RegosToken:          os.Getenv("DOCVISION_REGOS_TOKEN"),
		RegosTimeout:        regosTimeout,
		SignerURL:           stringEnv("DOCVISION_SIGNER_URL", DefaultSignerURL),
		SignerOrigin:        stringEnv("DOCVISION_SIGNER_ORIGIN", DefaultSignerOrigin),
		AllowedOrigins:      allowedOrigins,
	}, nil
}

func stringEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the job-search service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	// Real-time media transport (token signing + signaling endpoint).
	// Missing values are fatal for the token endpoint, not for the process.
	RTCAPIKey         string
	RTCAPISecret      string
	RTCServiceURL     string
	RTCConnectTimeout time.Duration

	// Avatar generation upstream. Missing values degrade the avatar
	// endpoint to mock responses instead of failing it.
	AvatarAPIKey    string
	AvatarPersonaID string
	AvatarAPIURL    string
	AvatarTimeout   time.Duration

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "joblens"),
		RTCAPIKey:                envTrimmed("RTC_API_KEY"),
		RTCAPISecret:             envTrimmed("RTC_API_SECRET"),
		RTCServiceURL:            envTrimmed("RTC_SERVICE_URL"),
		AvatarAPIKey:             envTrimmed("AVATAR_API_KEY"),
		AvatarPersonaID:          envTrimmed("AVATAR_PERSONA_ID"),
		AvatarAPIURL:             envOrDefault("AVATAR_API_URL", "https://api.tavus.io/realtime/personas/v2"),
		DatabaseURL:              envTrimmed("DATABASE_URL"),
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 2 * time.Minute,
		RTCConnectTimeout:        10 * time.Second,
		AvatarTimeout:            10 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RTCConnectTimeout, err = durationFromEnv("RTC_CONNECT_TIMEOUT", cfg.RTCConnectTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AvatarTimeout, err = durationFromEnv("AVATAR_TIMEOUT", cfg.AvatarTimeout)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.RTCConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("RTC_CONNECT_TIMEOUT must be positive")
	}
	if cfg.AvatarTimeout <= 0 {
		return Config{}, fmt.Errorf("AVATAR_TIMEOUT must be positive")
	}

	return cfg, nil
}

// RTCConfigured reports whether token minting has everything it needs.
func (c Config) RTCConfigured() bool {
	return c.RTCAPIKey != "" && c.RTCAPISecret != "" && c.RTCServiceURL != ""
}

// AvatarConfigured reports whether live avatar generation is possible.
func (c Config) AvatarConfigured() bool {
	return c.AvatarAPIKey != "" && c.AvatarPersonaID != ""
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

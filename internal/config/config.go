package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	CORSOrigins []string
	// AdminEmail always resolves to the admin role.
	AdminEmail string
	LLM        LLMConfig
	// RecurringSweepSchedule is a cron spec; empty disables the sweep.
	RecurringSweepSchedule string
}

// LLMConfig configures the advisory client.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "fincontrol"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		AdminEmail:  strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		LLM: LLMConfig{
			BaseURL: fallback(os.Getenv("LLM_BASE_URL"), "https://api.openai.com/v1"),
			APIKey:  strings.TrimSpace(os.Getenv("LLM_API_KEY")),
			Model:   fallback(os.Getenv("LLM_MODEL"), "gpt-4o-mini"),
			Timeout: durationOr(os.Getenv("LLM_TIMEOUT"), 45*time.Second),
		},
		RecurringSweepSchedule: strings.TrimSpace(os.Getenv("RECURRING_SWEEP_SCHEDULE")),
	}

	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "60")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// ClientConfig configures the command-line client.
type ClientConfig struct {
	APIURL     string
	PrefsPath  string
	Timeout    time.Duration
	AdminEmail string
}

// LoadClient reads the client configuration from the environment.
func LoadClient() ClientConfig {
	return ClientConfig{
		APIURL:     strings.TrimRight(fallback(os.Getenv("FINCONTROL_API_URL"), "http://localhost:8080"), "/"),
		PrefsPath:  fallback(os.Getenv("FINCONTROL_PREFS"), "fincontrol.db"),
		Timeout:    durationOr(os.Getenv("FINCONTROL_TIMEOUT"), 20*time.Second),
		AdminEmail: strings.TrimSpace(os.Getenv("FINCONTROL_ADMIN_EMAIL")),
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func durationOr(value string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
		return d
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

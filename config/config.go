// Package config reads service configuration from the environment. The service
// is deployed twelve-factor style; there is no config file.
package config

import (
	"os"
	"strings"
)

type Config struct {
	// Port the gateway listens on.
	Port string
	// AllowedOrigins is the CORS allowlist; empty means allow any origin.
	AllowedOrigins []string
	// RapidAPIKey enables the Instagram third-party-API fallback strategy.
	RapidAPIKey string
	// ChromePath overrides the browser binary used by the headless strategy.
	ChromePath string
	// DisableHeadless turns the browser strategy off entirely.
	DisableHeadless bool
}

func FromEnv() Config {
	return Config{
		Port:            envOr("PORT", "4000"),
		AllowedOrigins:  splitList(os.Getenv("ALLOWED_ORIGIN")),
		RapidAPIKey:     os.Getenv("RAPIDAPI_KEY"),
		ChromePath:      os.Getenv("CHROME_PATH"),
		DisableHeadless: os.Getenv("DISABLE_HEADLESS") != "",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Package config reads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"time"
)

// Config captures everything the server process needs at startup.
type Config struct {
	Addr           string
	DatabaseURL    string
	RedisURL       string
	AdminJWTSecret string

	// Source locations. The constituency template takes the election
	// number and a numeric prefecture code; the proportional template
	// takes the election number.
	ConstituencyURLTemplate string
	ProportionalURLTemplate string
	CouncillorsURL          string
	// CouncillorsFile, when set, reads the roster from disk instead of
	// the published dataset.
	CouncillorsFile string

	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables with development
// defaults. The admin secret has no default: routes stay locked unless it
// is set.
func FromEnv() Config {
	return Config{
		Addr:                    getenv("POLIBASE_ADDR", ":8080"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisURL:                os.Getenv("REDIS_URL"),
		AdminJWTSecret:          os.Getenv("POLIBASE_ADMIN_JWT_SECRET"),
		ConstituencyURLTemplate: getenv("POLIBASE_CONSTITUENCY_URL_TEMPLATE", "https://www.soumu.go.jp/senkyo/shugiin%d/pref_%02d.csv"),
		ProportionalURLTemplate: getenv("POLIBASE_PROPORTIONAL_URL_TEMPLATE", "https://www.soumu.go.jp/senkyo/shugiin%d/proportional.csv"),
		CouncillorsURL:          os.Getenv("POLIBASE_COUNCILLORS_URL"),
		CouncillorsFile:         os.Getenv("POLIBASE_COUNCILLORS_FILE"),
		ShutdownTimeout:         10 * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

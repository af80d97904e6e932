// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Database captures the Postgres connection settings. An empty URL selects
// the in-memory stores.
type Database struct {
	URL string
}

// Redis captures the shared-state connection settings. An empty URL selects
// the in-process revocation list.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Auth captures token issuing settings.
type Auth struct {
	JWTSigningKey string
	TokenTTL      time.Duration
	Issuer        string
}

// Assignment captures engine policy toggles.
type Assignment struct {
	PreserveClosedStatusOnUnassign bool
}

// Audit captures audit pipeline settings. BufferSize zero keeps the publisher
// synchronous.
type Audit struct {
	BufferSize int
}

// Config is the full runtime configuration.
type Config struct {
	Server     Server
	Database   Database
	Redis      Redis
	Auth       Auth
	Assignment Assignment
	Audit      Audit
}

// FromEnv reads configuration from AOS_* environment variables, applying
// development defaults where unset.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("AOS_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default, must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:            envString("AOS_ADDR", ":8080"),
			ShutdownTimeout: envDuration("AOS_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: Database{
			URL: os.Getenv("AOS_DATABASE_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("AOS_REDIS_URL"),
			PoolSize:     envInt("AOS_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("AOS_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("AOS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("AOS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("AOS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: Auth{
			JWTSigningKey: jwtSigningKey,
			TokenTTL:      envDuration("AOS_TOKEN_TTL", time.Hour),
			Issuer:        envString("AOS_TOKEN_ISSUER", "aos"),
		},
		Assignment: Assignment{
			PreserveClosedStatusOnUnassign: os.Getenv("AOS_PRESERVE_CLOSED_ON_UNASSIGN") == "true",
		},
		Audit: Audit{
			BufferSize: envInt("AOS_AUDIT_BUFFER_SIZE", 0),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

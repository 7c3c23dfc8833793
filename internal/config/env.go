package config

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Environment variable names read by Env.
const (
	EnvDBPath       = "TOONTREK_DB"
	EnvLogLevel     = "TOONTREK_LOG_LEVEL"
	EnvOTLPEndpoint = "TOONTREK_OTLP_ENDPOINT"
)

// DefaultDBPath is where finished runs are recorded unless overridden.
const DefaultDBPath = "~/.toontrek/runs.db"

// Env holds settings that come from the process environment.
type Env struct {
	DBPath       string
	LogLevel     log.Level
	OTLPEndpoint string // empty disables trace export
}

// LoadEnv reads an optional .env file and then the environment.
// A missing .env file is not an error; env vars may be set directly.
func LoadEnv(files ...string) Env {
	//nolint:errcheck // .env is optional
	godotenv.Load(files...)

	env := Env{
		DBPath:       DefaultDBPath,
		LogLevel:     log.WarnLevel,
		OTLPEndpoint: os.Getenv(EnvOTLPEndpoint),
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		env.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if lvl, err := log.ParseLevel(v); err == nil {
			env.LogLevel = lvl
		}
	}
	return env
}

// ResolveSeed returns seed, or a time-based seed when seed is 0.
func ResolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

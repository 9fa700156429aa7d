// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/banachtech/hedger/model"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

const (
	ModeRemote = "remote"
	ModeStub   = "stub"
)

// Config holds the settings of both binaries.
type Config struct {
	PricerMode    string
	PricerAddr    string
	PricerAPIKey  string
	PricerTimeout time.Duration
	StubSeed      uint64
	DatabaseURL   string

	Port          string
	APIKeyHash    string
	RateLimit     rate.Limit
	RateBurst     int
	EngineWorkers int
}

// Load reads the environment after loading files (default ".env"). A missing
// file is not an error; variables already set win over the file. PricerMode
// is checked by whoever builds the pricer, after flag overrides.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	c := Config{
		PricerMode:   getenv("PRICER_MODE", ModeRemote),
		PricerAddr:   getenv("PRICER_ADDR", "http://localhost:50051"),
		PricerAPIKey: os.Getenv("PRICER_API_KEY"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Port:         getenv("PORT", "50051"),
		APIKeyHash:   os.Getenv("PRICER_API_KEY_HASH"),
	}
	var err error
	if c.PricerTimeout, err = time.ParseDuration(getenv("PRICER_TIMEOUT", "5m")); err != nil {
		return Config{}, fmt.Errorf("%w: PRICER_TIMEOUT: %v", model.ErrInvalidConfiguration, err)
	}
	if c.StubSeed, err = strconv.ParseUint(getenv("STUB_SEED", "1"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("%w: STUB_SEED: %v", model.ErrInvalidConfiguration, err)
	}
	perSec, err := strconv.ParseFloat(getenv("PRICER_RATE", "10"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("%w: PRICER_RATE: %v", model.ErrInvalidConfiguration, err)
	}
	c.RateLimit = rate.Limit(perSec)
	if c.RateBurst, err = strconv.Atoi(getenv("PRICER_BURST", "20")); err != nil {
		return Config{}, fmt.Errorf("%w: PRICER_BURST: %v", model.ErrInvalidConfiguration, err)
	}
	if c.EngineWorkers, err = strconv.Atoi(getenv("ENGINE_WORKERS", "4")); err != nil {
		return Config{}, fmt.Errorf("%w: ENGINE_WORKERS: %v", model.ErrInvalidConfiguration, err)
	}
	return c, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

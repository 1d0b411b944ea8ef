// Package config loads runtime configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime knob. Each field maps to one environment
// variable; unset variables fall back to development defaults.
type Config struct {
	HTTPPort       string        // HTTP_PORT
	MySQLDSN       string        // MYSQL_DSN
	RedisAddr      string        // REDIS_ADDR ("" disables the cache)
	RedisPassword  string        // REDIS_PASSWORD
	RedisDB        int           // REDIS_DB
	AMQPURL        string        // AMQP_URL ("" disables event publishing)
	CacheTTL       time.Duration // CACHE_TTL
	LockTimeout    time.Duration // LOCK_TIMEOUT, wait budget for the reserve row lock
	ReservationTTL time.Duration // RESERVATION_TTL
	SeedData       bool          // SEED_DATA, seed sample rows when the table is empty
}

func Load() Config {
	return Config{
		HTTPPort:       getenv("HTTP_PORT", "8002"),
		MySQLDSN:       getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/inventory?parseTime=true&loc=UTC"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		AMQPURL:        os.Getenv("AMQP_URL"),
		CacheTTL:       envDur("CACHE_TTL", 5*time.Minute),
		LockTimeout:    envDur("LOCK_TIMEOUT", 5*time.Second),
		ReservationTTL: envDur("RESERVATION_TTL", 24*time.Hour),
		SeedData:       getenv("SEED_DATA", "true") == "true",
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt and envDur fall back to the default when the variable is unset or
// does not parse; a typo never silently becomes zero.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Package config loads the runtime configuration of TodoWebService from the process environment.
//
// A .env file in the working directory is loaded first when present; variables
// already set in the environment take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// DefaultSecret is used when JWT_SECRET is not set. Deployments must override it.
const DefaultSecret = "default-fallback-secret-change-in-production"

// TablePrefix is the table name prefix created by the migrations in ./migrations.
const TablePrefix = "do_"

// Config holds every setting the service reads at startup.
type Config struct {
	Port string

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// DBPrefix is prepended to the users and tasks table names. Only
	// TablePrefix is accepted since the migrations create that schema.
	DBPrefix  string
	DBTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration
	JWTLeeway time.Duration

	// RateLimitRPS of 0 disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel string
}

// Load reads a .env file when one exists and then builds the Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the Config from the given lookup function, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}
	cfg := &Config{
		Port:           r.str("PORT", "8080"),
		DBHost:         r.str("DB_HOST", "127.0.0.1"),
		DBPort:         r.int("DB_PORT", 3306),
		DBName:         r.str("DB_DATABASE", "todo_api"),
		DBUser:         r.str("DB_USERNAME", "root"),
		DBPassword:     r.str("DB_PASSWORD", ""),
		DBPrefix:       r.str("DB_PREFIX", TablePrefix),
		DBTimeout:      r.duration("DB_TIMEOUT", 10*time.Second),
		JWTSecret:      r.str("JWT_SECRET", DefaultSecret),
		JWTTTL:         r.seconds("JWT_TTL", 604800),
		JWTLeeway:      r.seconds("JWT_LEEWAY", 60),
		RateLimitRPS:   r.float("RATE_LIMIT_RPS", 2),
		RateLimitBurst: r.int("RATE_LIMIT_BURST", 20),
		LogLevel:       r.str("LOG_LEVEL", "info"),
	}
	if r.err != nil {
		return nil, r.err
	}
	if cfg.DBPrefix != TablePrefix {
		return nil, fmt.Errorf("config: DB_PREFIX %q does not match the migrated schema, which uses %q", cfg.DBPrefix, TablePrefix)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("config: JWT_TTL must be positive")
	}
	return cfg, nil
}

// MySQL returns the driver configuration for the task database.
// ClientFoundRows makes UPDATE report matched rows rather than changed rows.
func (c *Config) MySQL() *mysql.Config {
	m := mysql.NewConfig()
	m.User = c.DBUser
	m.Passwd = c.DBPassword
	m.Net = "tcp"
	m.Addr = fmt.Sprintf("%s:%d", c.DBHost, c.DBPort)
	m.DBName = c.DBName
	m.ParseTime = true
	m.ClientFoundRows = true
	m.AllowNativePasswords = true
	m.Params = map[string]string{"charset": "utf8mb4"}
	return m
}

type reader struct {
	getenv func(string) string
	err    error
}

func (r *reader) str(key, def string) string {
	if v := r.getenv(key); v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return f
}

func (r *reader) seconds(key string, def int) time.Duration {
	return time.Duration(r.int(key, def)) * time.Second
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return d
}

func (r *reader) fail(key, value string) {
	if r.err == nil {
		r.err = fmt.Errorf("config: invalid value %q for %s", value, key)
	}
}

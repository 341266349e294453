package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string

	// StockBackend selects which store backs the inventory ledger:
	// "mysql" (durable, default) or "redis" (hot counters for
	// high-contention deployments).
	StockBackend string

	LockTimeout         time.Duration
	DefaultCooldownDays int
	CooldownScope       string

	MigrationsPath string
}

// Load reads configuration from a .env file if present, otherwise
// from the environment, with sensible defaults for local development.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment variables")
	}

	return Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:            getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/aiddist?parseTime=true"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		StockBackend:        getEnv("STOCK_BACKEND", "mysql"),
		LockTimeout:         getDuration("LOCK_TIMEOUT_MS", 3000) * time.Millisecond,
		DefaultCooldownDays: getInt("DEFAULT_COOLDOWN_DAYS", 30),
		CooldownScope:       getEnv("COOLDOWN_SCOPE", "per_package"),
		MigrationsPath:      getEnv("MIGRATIONS_PATH", "migrations"),
	}
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("var", name).Warnf("invalid integer %q, using default %d", v, fallback)
		return fallback
	}
	return n
}

func getDuration(name string, fallbackMS int) time.Duration {
	return time.Duration(getInt(name, fallbackMS))
}

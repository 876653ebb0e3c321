package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads an optional .env first; real environment variables win.
func Load() App {
	loadDotenv()
	cfg := App{
		Port:             getenv("APP_PORT", "8080"),
		DatabaseURL:      must("DATABASE_URL"),
		DBMaxConns:       int32(getint("DB_MAX_CONNS", 10)),
		JWTSecret:        getenv("JWT_SECRET", "local_dev_secret"),
		JWTTTL:           time.Duration(getint("JWT_TTL_HOURS", 24)) * time.Hour,
		Env:              getenv("APP_ENV", "dev"),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		OrderEventsTopic: getenv("ORDER_EVENTS_TOPIC", "bookstore.orders"),
		OutboxSweep:      time.Duration(getint("OUTBOX_SWEEP_SECONDS", 30)) * time.Second,
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "local_dev_secret" {
		slog.Error("JWT_SECRET must be set outside dev", "env", cfg.Env)
		panic("missing env JWT_SECRET")
	}
	return cfg
}

func LoadAdmin() Admin {
	loadDotenv()
	return Admin{
		Email:     must("ADMIN_EMAIL"),
		Password:  must("ADMIN_PASSWORD"),
		FirstName: getenv("ADMIN_FIRST_NAME", "Admin"),
		LastName:  os.Getenv("ADMIN_LAST_NAME"),
	}
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "err", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid env value", "key", k, "value", v)
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}

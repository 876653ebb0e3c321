package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bookstore")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("DB_MAX_CONNS", "")
	t.Setenv("ORDER_EVENTS_TOPIC", "")

	cfg := Load()
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, int32(10), cfg.DBMaxConns)
	require.Equal(t, "bookstore.orders", cfg.OrderEventsTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bookstore")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("DB_MAX_CONNS", "abc")

	cfg := Load()
	require.Equal(t, 2*time.Hour, cfg.JWTTTL)
	require.Equal(t, int32(10), cfg.DBMaxConns)
	require.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoad_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.Panics(t, func() { Load() })
}

func TestLoad_RejectsDevSecretInProd(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bookstore")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")
	require.Panics(t, func() { Load() })
}

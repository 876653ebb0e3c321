package config

import "time"

type App struct {
	Port             string        `env:"APP_PORT" default:"8080"`
	DatabaseURL      string        `env:"DATABASE_URL,required"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" default:"10"`
	JWTSecret        string        `env:"JWT_SECRET,required"`
	JWTTTL           time.Duration `env:"JWT_TTL_HOURS" default:"24"`
	Env              string        `env:"APP_ENV" default:"dev"`
	KafkaBrokers     string        `env:"KAFKA_BROKERS"`
	OrderEventsTopic string        `env:"ORDER_EVENTS_TOPIC" default:"bookstore.orders"`
	OutboxSweep      time.Duration `env:"OUTBOX_SWEEP_SECONDS" default:"30"`
}

// Admin is read only by cmd/setup-admin.
type Admin struct {
	Email     string `env:"ADMIN_EMAIL,required"`
	Password  string `env:"ADMIN_PASSWORD,required"`
	FirstName string `env:"ADMIN_FIRST_NAME"`
	LastName  string `env:"ADMIN_LAST_NAME"`
}

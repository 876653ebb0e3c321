// Command setup-admin creates the first admin account, or promotes an
// existing user with the same email and resets their password.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"bookstore/config"
	"bookstore/model"
	userrepo "bookstore/repository/user"
	"bookstore/util/database"
	"bookstore/util/hash"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app := config.Load()
	admin := config.LoadAdmin()
	if len(admin.Password) < 6 {
		log.Error("ADMIN_PASSWORD must be at least 6 characters")
		os.Exit(1)
	}

	db, err := database.New(ctx, app.DatabaseURL, 2)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	hashed, err := hash.HashPassword(admin.Password)
	if err != nil {
		log.Error("hash failed", "err", err)
		os.Exit(1)
	}
	u := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(admin.Email)),
		PasswordHash: hashed,
		FirstName:    optional(admin.FirstName),
		LastName:     optional(admin.LastName),
	}
	if err := userrepo.New(db).UpsertAdmin(ctx, u); err != nil {
		log.Error("upsert admin failed", "email", u.Email, "err", err)
		os.Exit(1)
	}
	log.Info("admin ready", "id", u.ID, "email", u.Email, "role", u.Role)
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/testtrack/internal/infrastructure/logger"
	"github.com/yourorg/testtrack/pkg/config"
	"github.com/yourorg/testtrack/pkg/database"
)

// Seeds the bootstrap admin account so a fresh deployment has someone who
// can grant roles and permissions. Idempotent: an existing account with the
// email is left alone.
func main() {
	email := flag.String("email", "admin@testmanager.com", "admin email")
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -password <password> [-email <email>] [-username <username>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)

	pool, err := database.NewConnectionPool(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	database.Migrate(db, log)

	var existing int64
	err = db.QueryRow(`SELECT id FROM users WHERE email = $1`, *email).Scan(&existing)
	if err == nil {
		log.Info("admin account already exists", slog.Int64("user_id", existing))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var id int64
	err = db.QueryRow(
		`INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, 'admin') RETURNING id`,
		*username, *email, string(hash),
	).Scan(&id)
	if err != nil {
		log.Error("failed to create admin account", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("admin account created",
		slog.Int64("user_id", id),
		slog.String("email", *email),
	)
}

package main

// Provision the bootstrap superadmin account:
//   go run ./cmd/createsuperadmin -email admin@example.com -password secret

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"legalaid-backend/internal/shared/auth"
	"legalaid-backend/internal/shared/config"
	"legalaid-backend/internal/shared/storage/db"
	"legalaid-backend/internal/users"
)

func main() {
	email := flag.String("email", "", "superadmin email")
	password := flag.String("password", "", "superadmin password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Printf("both -email and -password are required")
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	tokens, err := auth.NewTokenService(
		cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLHours)*time.Hour,
	)
	if err != nil {
		log.Printf("failed to build token service: %v", err)
		os.Exit(1)
	}

	svc := users.NewService(&users.PGRepo{DB: sqlDB}, tokens)
	user, err := svc.CreateSuperadmin(ctx, *email, *password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			log.Printf("account already exists: %s", *email)
			os.Exit(1)
		}
		log.Printf("failed to create superadmin: %v", err)
		os.Exit(1)
	}

	log.Printf("superadmin created: %s (%s)", user.Email, user.ID)
}

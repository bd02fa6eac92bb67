package main

import (
	"context"
	"log"
	"os"
	"time"

	"catalog-sync/internal/config"
	"catalog-sync/internal/db"
	"catalog-sync/internal/migrate"
	"catalog-sync/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DBConnString, 2)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	// Seeding a fresh database needs the schema in place first.
	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	if err := seed.Apply(ctx, pool); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}
	logger.Println("demo catalog seeded")
}

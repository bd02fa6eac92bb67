package main

import (
	"context"
	"log"
	"os"
	"time"

	"catalog-sync/internal/config"
	"catalog-sync/internal/db"
	"catalog-sync/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DBConnString, 2)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	start := time.Now()
	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}
	logger.Printf("migrations applied in %s", time.Since(start).Truncate(time.Millisecond))
}

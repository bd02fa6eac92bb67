package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"catalog-sync/internal/config"
	"catalog-sync/internal/db"
	"catalog-sync/internal/importer"
	"catalog-sync/internal/registry"
	offerrepo "catalog-sync/internal/repository/offer"
	productrepo "catalog-sync/internal/repository/product"
	productsvc "catalog-sync/internal/service/product"
)

// noopEnqueuer skips the initial reconcile; the running api process picks
// imported products up on its next scheduled fan-out.
type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueReconcile(string) bool { return true }

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV (id,name,description)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, 0)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	registryClient := registry.New(registry.Config{
		BaseURL:      cfg.RegistryBaseURL,
		ClientSecret: cfg.RegistrySecret,
		TokenTTL:     cfg.TokenTTL,
		Timeout:      cfg.RegistryTimeout,
		RateLimitRPS: cfg.RegistryRateLimit,
	}, logger)

	productRepo := productrepo.NewPostgres(pool, logger)
	offerRepo := offerrepo.NewPostgres(pool, logger)
	productService := productsvc.New(productRepo, offerRepo, registryClient, noopEnqueuer{}, logger)

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productService)

	start := time.Now()
	created, skipped, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d products (%d already registered) in %s\n", created, skipped, time.Since(start).Truncate(time.Millisecond))
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"catalog-sync/internal/config"
	"catalog-sync/internal/db"
	"catalog-sync/internal/httpserver"
	"catalog-sync/internal/registry"
	offerrepo "catalog-sync/internal/repository/offer"
	productrepo "catalog-sync/internal/repository/product"
	offersvc "catalog-sync/internal/service/offer"
	productsvc "catalog-sync/internal/service/product"
	syncsvc "catalog-sync/internal/service/sync"
	"catalog-sync/internal/worker"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	// Workers and HTTP handlers share the pool; leave headroom for the latter.
	dbpool, err := db.Connect(ctx, cfg.DBConnString, int32(cfg.SyncWorkers+4))
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	offerRepo := offerrepo.NewPostgres(dbpool, logger)

	registryClient := registry.New(registry.Config{
		BaseURL:      cfg.RegistryBaseURL,
		ClientSecret: cfg.RegistrySecret,
		TokenTTL:     cfg.TokenTTL,
		Timeout:      cfg.RegistryTimeout,
		RateLimitRPS: cfg.RegistryRateLimit,
	}, logger)

	engine := syncsvc.New(registryClient, productRepo, offerRepo, logger)

	queue, err := worker.NewQueue(cfg.SyncWorkers, 1024, cfg.SyncMaxRetries, logger)
	if err != nil {
		logger.Fatalf("init task queue: %v", err)
	}
	dispatcher := &worker.Dispatcher{Queue: queue, Syncer: engine}

	productService := productsvc.New(productRepo, offerRepo, registryClient, dispatcher, logger)
	offerService := offersvc.New(offerRepo)

	scheduler := worker.NewScheduler(productRepo, dispatcher, cfg.SyncPageSize, cfg.SyncInterval, logger)

	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	queue.Start(workerCtx)
	if err := scheduler.Start(); err != nil {
		logger.Fatalf("start scheduler: %v", err)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc: productService,
		OfferSvc:   offerService,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Handlers enqueue reconcile tasks, so the server must stop taking
	// requests before the queue closes intake.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}

	queue.Stop(shutdownCtx)
}

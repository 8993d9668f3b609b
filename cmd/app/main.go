package main

import (
	"cartstore/internal/app"
	"cartstore/internal/catalog"
	"cartstore/internal/database/sqlite"
	cartservice "cartstore/internal/service/cart"
	"cartstore/pkg/config"
	"cartstore/pkg/lib/logger"
	"cartstore/pkg/lib/logger/sl"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.SetupLogger(cfg.HTTP.Env)
	if err != nil {
		panic(err)
	}

	storage, err := sqlite.New(log, cfg.StorageDSN())
	if err != nil {
		panic(err)
	}

	products := catalog.FromConfig(cfg.Catalog)
	log.Info("Catalog loaded", "products", products.Len())

	application := app.New(
		log,
		cfg.HTTP.Port,
		cartservice.New(log, storage, products),
	)

	go func() {
		if err := application.Run(); err != nil {
			log.Error("Application failed to start", sl.Err(err))
			panic(err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGTERM, syscall.SIGINT)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Stopping HTTP server")
	if err := application.Stop(ctx); err != nil {
		log.Error("Failed to stop HTTP server", sl.Err(err))
	}

	log.Info("Closing database")
	if err := storage.Close(); err != nil {
		log.Error("Failed to close database", sl.Err(err))
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todotracker/internal/config"
	"todotracker/internal/database"
	"todotracker/internal/logging"
	"todotracker/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	flag.Parse()

	startedAt := time.Now()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info", "text").Fatal("invalid configuration", "err", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("database connection failed", "driver", cfg.Database.Driver, "err", err)
	}
	defer db.Close()
	logger.Info("connected to database", "driver", db.Dialect)

	if err := database.CreateTables(ctx, db); err != nil {
		logger.Fatal("schema bootstrap failed", "err", err)
	}

	router, err := server.New(cfg, db, logger, startedAt)
	if err != nil {
		logger.Fatal("server setup failed", "err", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Todo Tracker API starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

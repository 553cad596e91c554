// Package main provides the entry point for the vidgrab web service.
// @title vidgrab API
// @version 1.0
// @description Web front end for a video download service: look up the formats of a link, pick one, download it.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/denisAlshanov/vidgrab/docs" // Import for swagger docs
	"github.com/denisAlshanov/vidgrab/internal/api/handlers"
	"github.com/denisAlshanov/vidgrab/internal/api/router"
	"github.com/denisAlshanov/vidgrab/internal/browser"
	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/database"
	"github.com/denisAlshanov/vidgrab/internal/services/backend"
	"github.com/denisAlshanov/vidgrab/internal/services/storage"
	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/services/tokens"
	"github.com/denisAlshanov/vidgrab/internal/utils"
	"github.com/denisAlshanov/vidgrab/internal/web"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 30 * time.Second
	staticDir       = "internal/web/static"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting vidgrab service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	saver, err := storage.NewSaver(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	var journal database.Journal
	if cfg.MongoDB.Enabled() {
		db, err := database.NewMongoDB(&cfg.MongoDB)
		if err != nil {
			logger.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		journal = db
	} else {
		logger.Info("MONGODB_URI not set, keeping download history in memory")
		journal = database.NewMemoryJournal(0)
	}

	client := backend.NewClient(&cfg.Backend)
	signer := tokens.NewSigner(cfg.API.TokenSecret, cfg.API.TokenTTL)
	opts := browser.Options{
		FileName:          cfg.Download.FileName,
		PreserveExtension: cfg.Download.PreserveExtension,
	}

	var background sync.WaitGroup
	runInBackground := func(fn func(context.Context)) {
		background.Add(1)
		go func() {
			defer background.Done()
			fn(ctx)
		}()
	}

	registry := browser.NewRegistry(cfg.Server.SessionTTL, browser.QueuedSessions(client, saver, journal, opts))
	runInBackground(registry.Run)

	assets, err := web.Handler(cfg.Server.DevAssets, staticDir)
	if err != nil {
		logger.Fatalf("Failed to load page assets: %v", err)
	}

	browserHandler := handlers.NewBrowserHandler(registry, signer, saver)
	downloadsHandler := handlers.NewDownloadsHandler(journal)
	healthHandler := handlers.NewHealthHandler(journal, saver, version)

	r := router.NewRouter(ctx, cfg, browserHandler, downloadsHandler, healthHandler, assets)
	srv := &http.Server{
		Addr:              r.Addr(),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	if cfg.Telegram.Enabled() {
		api, err := telegram.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.Errorf("Failed to connect to Telegram: %v", err)
			logger.Info("Telegram bot disabled - web front end only")
		} else {
			logger.Infof("Connected as bot: @%s", api.Self.UserName)
			botRegistry := browser.NewRegistry(cfg.Server.SessionTTL, telegram.Sessions(api, client, journal, opts))
			runInBackground(botRegistry.Run)
			runInBackground(telegram.NewBot(api, botRegistry).Run)
		}
	}

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	background.Wait()

	if err := journal.Close(shutdownCtx); err != nil {
		logger.Errorf("Failed to close database connection: %v", err)
	}

	logger.Info("Server shutdown complete")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bidding "storefront/internal/biddingService"
	"storefront/internal/config"
	"storefront/internal/livestore"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/ws"
	"storefront/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo := openRecordStore(ctx, cfg)
	defer closeRepo()

	notifier, closeNotifier := buildNotifier(cfg, repo)
	defer closeNotifier()

	auctions := bidding.NewAuctionService(repo, notifier, bidding.Options{
		StoreTimeout: cfg.StoreTimeout,
		ClockOffset:  cfg.ClockOffset,
	})

	sweeper := bidding.NewSweeper(auctions, cfg.SweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	hub := livestore.NewHub(cfg.CallConnectDelay)
	defer hub.Close()

	router := server.SetupRouter(server.Dependencies{
		Auctions:  auctions,
		LiveStore: hub,
		Sockets:   ws.NewServer(cfg, hub),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("starting storefront server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("server failed", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
	}
}

// openRecordStore connects to Postgres when DATABASE_URL is set, else falls back to memory
func openRecordStore(ctx context.Context, cfg *config.Config) (repository.AuctionDB, func()) {
	if cfg.DatabaseURL == "" {
		utils.Warn("DATABASE_URL not set, using in-memory record store", nil)
		return repository.NewMemoryRepo(), func() {}
	}

	pg, err := repository.NewPostgresRepo(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		utils.Fatal("failed to connect to record store", map[string]any{"error": err.Error()})
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		utils.Fatal("failed to prepare record store schema", map[string]any{"error": err.Error()})
	}
	return pg, pg.Close
}

// buildNotifier always records to the store and additionally publishes to Redis when configured
func buildNotifier(cfg *config.Config, store notify.NotificationStore) (notify.Notifier, func()) {
	composite := notify.NewComposite(notify.NewRecordStoreNotifier(store))
	if cfg.RedisAddr == "" {
		return composite, func() {}
	}

	client, err := notify.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		utils.Warn("redis unavailable, notifications stay in the record store only", map[string]any{"error": err.Error()})
		return composite, func() {}
	}
	composite.Add(notify.NewRedisPublisher(client, cfg.RedisNotifyChannel))
	return composite, func() { _ = client.Close() }
}

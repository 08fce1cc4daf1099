package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bvi/citizenship_backend/internal/citizenship"
	"bvi/citizenship_backend/internal/config"
	"bvi/citizenship_backend/internal/discordbot"
	"bvi/citizenship_backend/internal/keepalive"
	"bvi/citizenship_backend/internal/metrics"
	"bvi/citizenship_backend/internal/notify"
	"bvi/citizenship_backend/internal/permission"
	"bvi/citizenship_backend/internal/roblox"
	"bvi/citizenship_backend/internal/stats"
	"bvi/citizenship_backend/internal/store"
)

// main wires config, store, core workflow, and the Discord adapter, then
// keeps the process lifecycle small. All business logic lives in internal.
func main() {
	cfg, err := config.Load(os.Getenv("BOT_CONFIG"))
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	// Store selection: postgres when a DSN is set, redis next, otherwise the
	// volatile in-memory reference store.
	var appStore citizenship.Store
	switch {
	case cfg.DatabaseURL != "":
		pg, err := store.ConnectPostgres(ctx, cfg.DatabaseURL, 6)
		if err != nil {
			log.Fatalf("❌ postgres connect: %v", err)
		}
		defer pg.Close()
		appStore = pg
		logger.Info("using postgres application store")
	case cfg.RedisURL != "":
		rd, err := store.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ redis connect: %v", err)
		}
		defer rd.Close()
		appStore = rd
		logger.Info("using redis application store")
	default:
		appStore = store.NewMemory()
		logger.Info("using in-memory application store; records do not survive restarts")
	}

	limits := citizenship.FieldLimits(cfg.FieldLimits)
	tracker := stats.NewTracker()
	m := metrics.New(prometheus.DefaultRegisterer)
	policy := permission.New(cfg.AdminRoleIDs, cfg.ManagerRoleIDs, logger)

	bot, err := discordbot.New(cfg.DiscordToken, cfg, limits, logger)
	if err != nil {
		log.Fatalf("❌ discord: %v", err)
	}

	delegate := discordbot.NewDelegate(bot.Session(), cfg.GuildID, cfg.CitizenRoleID, cfg.Channels)
	dispatcher := notify.NewDispatcher(delegate, cfg.CallTimeout, logger)
	banClient := roblox.NewClient(cfg.RobloxAPIKey, cfg.RobloxBanURL, logger)

	workflow := citizenship.NewWorkflow(
		citizenship.NewLifecycle(appStore, limits),
		policy,
		dispatcher,
		citizenship.WithRoleGranter(delegate),
		citizenship.WithBanDelegate(banClient),
		citizenship.WithTracker(tracker),
		citizenship.WithMetrics(m),
		citizenship.WithLogger(logger),
		citizenship.WithCallTimeout(cfg.CallTimeout),
	)
	bot.Attach(workflow, tracker)

	if err := bot.Open(ctx); err != nil {
		log.Fatalf("❌ discord: %v", err)
	}
	defer bot.Close()

	startedAt := time.Now()
	srv := keepalive.New(":"+cfg.Port, func() keepalive.Status {
		return keepalive.Status{
			Status:                  "running",
			Service:                 "British Virgin Islands Discord Bot",
			UptimeSeconds:           int64(time.Since(startedAt).Seconds()),
			AdminRolesConfigured:    len(cfg.AdminRoleIDs) > 0,
			ManagerRolesConfigured:  len(cfg.ManagerRoleIDs) > 0,
			PendingApplicationsSeen: tracker.Snapshot().Pending,
		}
	})
	go func() {
		logger.Info("keep-alive server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ keep-alive server: %v", err)
		}
	}()

	logger.Info("bot ready for citizenship applications 🚀")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("keep-alive shutdown failed", "err", err)
	}
	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/socialfeed/server/pkg/admin"
	"github.com/socialfeed/server/pkg/api/rest"
	"github.com/socialfeed/server/pkg/config"
	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/emails"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/images"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/networks"
	"github.com/socialfeed/server/pkg/rdb"
	"github.com/socialfeed/server/pkg/users"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Init logger
	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.L.Sync()

	// Init Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn: cfg.SentryDsn,
	}); err != nil {
		logger.L.Fatal("failed initialising sentry", zap.Error(err))
	}
	defer sentry.Flush(time.Second * 5)

	// Init ids
	feedid.Init(cfg.NodeId)

	// Init MongoDB
	if err := db.Init(cfg.MongoUri, cfg.MongoDb); err != nil {
		logger.L.Fatal("failed connecting to mongodb", zap.Error(err))
	}

	// Init Redis
	if err := rdb.Init(cfg.RedisUri); err != nil {
		logger.L.Fatal("failed connecting to redis", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init token signing keys
	if err := users.InitTokenSigningKeys(ctx); err != nil {
		logger.L.Fatal("failed initialising token signing keys", zap.Error(err))
	}

	// Init profile cache
	users.InitProfileCache(cfg.ProfileCacheTTL, cfg.ProfileCacheSize)

	// Load network blocks
	if err := networks.Load(ctx); err != nil {
		logger.L.Fatal("failed loading network blocks", zap.Error(err))
	}

	// Init emails
	emails.Init(cfg.Email)

	// Schedule counter reconciliation
	if err := admin.Counters.Schedule(cfg.ReconcileSchedule); err != nil {
		logger.L.Fatal("invalid reconcile schedule", zap.String("schedule", cfg.ReconcileSchedule), zap.Error(err))
	}
	admin.Counters.Start()
	defer admin.Counters.Stop()

	// Image host
	var uploader *images.Uploader
	if cfg.ImageApiKey != "" {
		uploader = images.NewUploader(cfg.ImageUploadUrl, cfg.ImageApiKey)
	} else {
		logger.L.Warn("IMAGE_API_KEY is not set, uploads are disabled")
	}

	// Serve HTTP router
	server := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           rest.Router(cfg.RealIPHeader, uploader),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("failed shutting down HTTP server", zap.Error(err))
		}
	}()

	logger.L.Info("serving HTTP", zap.String("address", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L.Error("HTTP server failed", zap.Error(err))
	}
}

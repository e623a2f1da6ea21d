package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/socialfeed/server/pkg/api/events"
	"github.com/socialfeed/server/pkg/config"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/rdb"
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

	// Init Redis
	if err := rdb.Init(cfg.RedisUri); err != nil {
		logger.L.Fatal("failed connecting to redis", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create & run server
	server := events.NewServer()
	if err := server.Run(ctx, cfg.EventsAddr); err != nil {
		logger.L.Error("events server failed", zap.Error(err))
	}
}

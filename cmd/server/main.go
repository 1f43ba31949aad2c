package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/headcount-dashboard/internal/adapters/grpc/handler"
	"github.com/ogurasousui/headcount-dashboard/internal/adapters/repository/postgres"
	"github.com/ogurasousui/headcount-dashboard/internal/core/livestate"
	"github.com/ogurasousui/headcount-dashboard/internal/core/mutation"
	"github.com/ogurasousui/headcount-dashboard/internal/platform/config"
	pg "github.com/ogurasousui/headcount-dashboard/internal/platform/db/postgres"
	"github.com/ogurasousui/headcount-dashboard/internal/platform/logging"
	"github.com/ogurasousui/headcount-dashboard/internal/platform/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var (
		queryer  pg.Queryer
		listener *pg.Listener
		tx       mutation.TransactionManager
	)

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	switch {
	case err == nil:
		defer dbPool.Close()
		queryer = dbPool
		listener = pg.NewListener(pg.PoolDialer(dbPool), cfg.Sync.NotifyChannel, cfg.Sync.ReconnectDelay, logger)
		tx = pg.NewTransactionManager(dbPool)
	default:
		// 接続できない場合も空の一覧で起動し、ヘルスは NOT_SERVING のままにします。
		logger.Warn("database unavailable, serving an empty read-only dashboard", zap.Error(err))
	}

	gateway := postgres.NewEmployeeGateway(queryer, listener)
	if listener != nil {
		channel, err := gateway.NotifyTriggerChannel(ctx)
		switch {
		case err != nil:
			logger.Warn("could not verify notify trigger, live updates may not arrive", zap.Error(err))
		case channel != cfg.Sync.NotifyChannel:
			return fmt.Errorf("sync.notify_channel %q does not match trigger channel %q", cfg.Sync.NotifyChannel, channel)
		}
	}
	store := livestate.New(gateway, logger)
	defer store.Teardown()

	svc := mutation.NewService(mutation.Deps{
		Repository: gateway,
		Store:      store,
		Tx:         tx,
		Notifier:   logging.NoticeLogger(logger),
		Logger:     logger,
	}, mutation.Options{
		RefetchAfterWrite: cfg.Sync.RefetchAfterWriteEnabled(),
		RequireTeam:       cfg.Sync.RequireTeamOnAddEnabled(),
	})

	grpcServer := server.New(cfg.Server.ListenAddr, handler.NewDashboardGrpcHandler(store, svc), logger)
	stopTracking := grpcServer.TrackStore(store)
	defer stopTracking()

	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("start live state: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if listener != nil {
		g.Go(func() error { return listener.Run(gctx) })
	}
	g.Go(func() error { return grpcServer.Run(gctx) })

	return g.Wait()
}

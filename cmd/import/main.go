package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/headcount-dashboard/internal/adapters/importer/csvimport"
	"github.com/ogurasousui/headcount-dashboard/internal/adapters/repository/postgres"
	"github.com/ogurasousui/headcount-dashboard/internal/core/mutation"
	"github.com/ogurasousui/headcount-dashboard/internal/platform/config"
	pg "github.com/ogurasousui/headcount-dashboard/internal/platform/db/postgres"
	"github.com/ogurasousui/headcount-dashboard/internal/platform/logging"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		filePath   = flag.String("file", "", "CSV file to import")
		dryRun     = flag.Bool("dry-run", false, "parse the file and report problems without writing")
	)
	flag.Parse()

	if *filePath == "" {
		log.Fatal("-file is required")
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
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
	logger = logger.Named("import").With(zap.String("file", *filePath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *filePath, *dryRun); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, path string, dryRun bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := csvimport.Parse(f)
	if err != nil {
		return err
	}
	for _, rowErr := range parsed.Errors {
		logger.Warn("row problem", zap.Int("line", rowErr.Line), zap.String("field", rowErr.Field), zap.Error(rowErr.Err))
	}
	logger.Info("parsed file", zap.Int("rows", len(parsed.Rows)), zap.Int("problems", len(parsed.Errors)))

	if dryRun || len(parsed.Rows) == 0 {
		return nil
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	svc := mutation.NewService(mutation.Deps{
		Repository: postgres.NewEmployeeRepository(dbPool),
		Tx:         pg.NewTransactionManager(dbPool),
		Notifier:   logging.NoticeLogger(logger),
		Logger:     logger,
	}, mutation.DefaultOptions())

	result, err := svc.ImportEmployees(ctx, parsed.Rows)
	if err != nil {
		return err
	}
	logger.Info("import completed", zap.Int("inserted", result.Inserted))
	return nil
}

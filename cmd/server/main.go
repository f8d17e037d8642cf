package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"coworkpos-backend/internal/config"
	"coworkpos-backend/internal/db"
	"coworkpos-backend/internal/filestore"
	"coworkpos-backend/internal/handler"
	"coworkpos-backend/internal/notify"
	"coworkpos-backend/internal/ports"
	"coworkpos-backend/internal/repository"
	"coworkpos-backend/internal/scheduler"
	"coworkpos-backend/internal/server"
	"coworkpos-backend/internal/service"
	"coworkpos-backend/migrations"
)

func runMigrations(dsn string, log *slog.Logger) error {
	goose.SetBaseFS(migrations.Files)
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	if err := goose.Up(sqlDB, "."); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// storage backend: PostgreSQL when DATABASE_URL is set, JSON files otherwise
	var store ports.Store
	if cfg.DatabaseURL != "" {
		if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = repository.NewStore(pg)
		logger.Info("using postgres store")
	} else {
		fs, err := filestore.New(cfg.FileStoreDir)
		if err != nil {
			logger.Error("failed to open file store", "err", err)
			os.Exit(1)
		}
		store = fs
		logger.Info("using file store", "dir", cfg.FileStoreDir)
	}

	loc := cfg.Location()

	// services
	authSvc := service.AuthService{Config: cfg, Users: store, Logger: logger}
	coworkingSvc := service.NewCoworkingService(store, cfg.Tariff, logger)
	ledgerSvc := service.NewLedgerService(store, logger, cfg.ReportRetention)
	cutSvc := service.NewCutService(store, cfg.Tariff, logger, cfg.ReportRetention)

	// cash cut scheduler
	supervisor := notify.NewSupervisor(cfg.SupervisorURL, "cash-cut", cfg.AgentID, logger)
	sched := scheduler.New(cutSvc, supervisor, scheduler.SystemClock(), loc,
		cfg.CutTimes, cfg.HealthCheckInterval, logger)
	go sched.Run(ctx)

	// handlers
	healthHandler := handler.HealthHandler{Store: store}
	authHandler := handler.AuthHandler{Service: &authSvc}
	productHandler := handler.ProductHandler{Store: store}
	saleHandler := handler.SaleHandler{Store: store, Location: loc}
	expenseHandler := handler.ExpenseHandler{Store: store, Location: loc}
	coworkingHandler := handler.CoworkingHandler{Service: coworkingSvc}
	cashSessionHandler := handler.CashSessionHandler{Service: ledgerSvc}
	reportHandler := handler.ReportHandler{Cut: cutSvc, Location: loc}

	router := server.NewRouter(cfg, logger, healthHandler, authHandler, productHandler,
		saleHandler, expenseHandler, coworkingHandler, cashSessionHandler, reportHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

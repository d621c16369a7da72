package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gamblelog/api"
	"gamblelog/config"
	"gamblelog/database"
	"gamblelog/events"
	"gamblelog/notify"
	"gamblelog/repository"
	"gamblelog/service"
	"gamblelog/worker"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout        = 10 * time.Second
	sessionCleanupInterval = time.Hour
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	setupLogging(cfg)

	log.Info("Starting gamblelog...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, databaseURL(cfg), database.PoolOptions{MaxConns: cfg.DatabaseMaxConns})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("Closing database connection...")
		db.Close()
	}()
	log.Info("Database connection established successfully")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	userService := service.NewUserService(uowFactory)
	loanService := service.NewLoanService(uowFactory)
	services := api.Services{
		Users:       userService,
		Records:     service.NewRecordService(uowFactory),
		Budgets:     service.NewBudgetService(uowFactory, time.Local),
		Stats:       service.NewStatsService(uowFactory, time.Local),
		Dashboard:   service.NewDashboardService(uowFactory, loanService, time.Local),
		Loans:       loanService,
		Tournaments: service.NewTournamentService(uowFactory, cfg),
	}
	log.Info("Services initialized successfully")

	// Event subscribers
	service.SubscribeBudgetAlerts(eventBus, uowFactory, time.Local, time.Now)
	if err := setupNotifications(cfg, eventBus, userService); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(services, db, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Infof("HTTP server listening in %s mode", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return worker.StartInterestWorker(gctx, loanService, cfg.InterestCheckInterval)
	})

	g.Go(func() error {
		return worker.StartSessionCleanupWorker(gctx, userService, sessionCleanupInterval)
	})

	err = g.Wait()

	// Let in-flight event handlers finish before the database closes
	eventBus.Wait()
	log.Info("Shutdown completed")

	return err
}

func setupNotifications(cfg *config.Config, bus *events.Bus, users notify.UserLookup) error {
	if cfg.DiscordToken == "" || cfg.DiscordChannelID == "" {
		notify.LogOnly(bus)
		return nil
	}

	session, err := notify.Open(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord notifier: %w", err)
	}
	notify.New(session, cfg.DiscordChannelID, users).Subscribe(bus)
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func databaseURL(cfg *config.Config) string {
	return database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
}

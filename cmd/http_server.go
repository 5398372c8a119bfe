package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/rental-management/internal"
	backupPostgres "github.com/frahmantamala/rental-management/internal/backup/postgres"
	"github.com/frahmantamala/rental-management/internal/core/events"
	"github.com/frahmantamala/rental-management/internal/equipment"
	equipmentPostgres "github.com/frahmantamala/rental-management/internal/equipment/postgres"
	"github.com/frahmantamala/rental-management/internal/location"
	locationPostgres "github.com/frahmantamala/rental-management/internal/location/postgres"
	"github.com/frahmantamala/rental-management/internal/rental"
	rentalPostgres "github.com/frahmantamala/rental-management/internal/rental/postgres"
	"github.com/frahmantamala/rental-management/internal/site"
	sitePostgres "github.com/frahmantamala/rental-management/internal/site/postgres"
	"github.com/frahmantamala/rental-management/internal/transport/rest"
	"github.com/frahmantamala/rental-management/internal/user"
	userPostgres "github.com/frahmantamala/rental-management/internal/user/postgres"
	"github.com/frahmantamala/rental-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// repositories
	equipmentRepo := equipmentPostgres.NewEquipmentRepository(gormDB)
	rentalRepo := rentalPostgres.NewRentalRepository(gormDB)
	siteRepo := sitePostgres.NewSiteRepository(gormDB)
	locationRepo := locationPostgres.NewLocationRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	backupRepo := backupPostgres.NewBackupRepository(gormDB)

	// services
	equipmentService := equipment.NewService(equipmentRepo, backupRepo, eventBus, lg)
	siteService := site.NewService(siteRepo, lg)
	locationService := location.NewService(locationRepo, lg)
	userService := user.NewService(userRepo, lg)
	availabilityEngine := rental.NewEngine(rentalRepo, equipmentRepo, lg)
	rentalService := rental.NewService(rentalRepo, equipmentRepo, siteService, availabilityEngine, eventBus, lg)

	// handlers
	userHandler := user.NewHandler()
	equipmentHandler := equipment.NewHandler(equipmentService)
	rentalHandler := rental.NewHandler(rentalService)
	siteHandler := site.NewHandler(siteService)
	locationHandler := location.NewHandler(locationService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, config, userService, userHandler, equipmentHandler, rentalHandler, siteHandler, locationHandler, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm opens an ORM session over the already-pooled connection so
// repositories and the health check share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}

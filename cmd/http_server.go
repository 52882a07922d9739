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

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/auth"
	authPostgres "github.com/frahmantamala/crm-management/internal/auth/postgres"
	"github.com/frahmantamala/crm-management/internal/authz"
	authzPostgres "github.com/frahmantamala/crm-management/internal/authz/postgres"
	"github.com/frahmantamala/crm-management/internal/contract"
	contractPostgres "github.com/frahmantamala/crm-management/internal/contract/postgres"
	"github.com/frahmantamala/crm-management/internal/customer"
	customerPostgres "github.com/frahmantamala/crm-management/internal/customer/postgres"
	"github.com/frahmantamala/crm-management/internal/event"
	eventPostgres "github.com/frahmantamala/crm-management/internal/event/postgres"
	"github.com/frahmantamala/crm-management/internal/transport/rest"
	"github.com/frahmantamala/crm-management/internal/user"
	userPostgres "github.com/frahmantamala/crm-management/internal/user/postgres"
	"github.com/frahmantamala/crm-management/pkg/logger"
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
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	engine := authz.NewEngine()

	sec := deps.Config.Security
	tokenGen := auth.NewJWTTokenGenerator(
		sec.AccessTokenSecret, sec.RefreshTokenSecret,
		sec.AccessTokenDuration, sec.RefreshTokenDuration)

	roleRepo := authzPostgres.NewRoleRepository(deps.DB)
	authRepo := authPostgres.NewRepository(deps.Gorm, roleRepo)
	authService := auth.NewService(authRepo, tokenGen, sec.BCryptCost)
	authHandler := auth.NewHandler(authService)
	rbac := auth.NewRBACAuthorization(deps.Logger)

	customerRepo := customerPostgres.NewCustomerRepository(deps.Gorm)
	customerService := customer.NewService(customerRepo, engine, deps.Logger)
	customerHandler := customer.NewHandler(customerService)

	contractRepo := contractPostgres.NewContractRepository(deps.Gorm)
	contractService := contract.NewService(contractRepo, customerRepo, engine, deps.Logger)
	contractHandler := contract.NewHandler(contractService)

	eventRepo := eventPostgres.NewEventRepository(deps.Gorm)
	eventService := event.NewService(eventRepo, engine, deps.Logger)
	eventHandler := event.NewHandler(eventService)

	userRepo := userPostgres.NewUserRepository(deps.Gorm)
	userService := user.NewService(userRepo, authService, engine, deps.Logger)
	userHandler := user.NewHandler(userService)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB,
		authHandler, rbac, userHandler, customerHandler, contractHandler, eventHandler,
		deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	if err := validateOpenAPISpec(config.Server.OpenAPISpecPath); err != nil {
		return nil, fmt.Errorf("openapi spec validation failed: %w", err)
	}

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// validateOpenAPISpec loads and validates the served spec so a broken
// document fails at startup instead of at the first swagger request.
func validateOpenAPISpec(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Warn("openapi spec not found, swagger UI will be empty", "path", path)
		return nil
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}

// initDB opens the configured database and returns both handles: sqlx for
// raw SQL (health checks, role lookups) and gorm on the same connection pool
// for the repositories.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	gormConfig := &gorm.Config{TranslateError: true}

	if cfg.Driver == "sqlite" {
		gormDB, err := gorm.Open(gormsqlite.Open(cfg.Source), gormConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		return sqlx.NewDb(sqlDB, "sqlite"), gormDB, nil
	}

	dbConn, err := sqlx.Connect("pgx", cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: dbConn.DB}), gormConfig)
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm over pgx: %w", err)
	}

	return dbConn, gormDB, nil
}

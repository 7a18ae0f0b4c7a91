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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/audit"
	auditpg "github.com/locpham246/task-manager/internal/audit/postgres"
	"github.com/locpham246/task-manager/internal/auth"
	"github.com/locpham246/task-manager/internal/core/events"
	"github.com/locpham246/task-manager/internal/document"
	documentpg "github.com/locpham246/task-manager/internal/document/postgres"
	"github.com/locpham246/task-manager/internal/email"
	"github.com/locpham246/task-manager/internal/task"
	taskpg "github.com/locpham246/task-manager/internal/task/postgres"
	"github.com/locpham246/task-manager/internal/transport/rest"
	"github.com/locpham246/task-manager/internal/user"
	userpg "github.com/locpham246/task-manager/internal/user/postgres"
	"github.com/locpham246/task-manager/internal/whitelist"
	whitelistpg "github.com/locpham246/task-manager/internal/whitelist/postgres"
	"github.com/locpham246/task-manager/pkg/logger"
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
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
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

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(appLogger)

	// Repositories
	userRepo := userpg.NewUserRepository(gormDB)
	taskRepo := taskpg.NewTaskRepository(gormDB)
	documentRepo := documentpg.NewDocumentRepository(gormDB)
	whitelistRepo := whitelistpg.NewWhitelistRepository(gormDB)
	auditRepo := auditpg.NewAuditRepository(gormDB)

	// Services
	auditService := audit.NewService(auditRepo, appLogger)
	audit.NewEventHandler(auditService).RegisterHandlers(bus)

	whitelistService := whitelist.NewService(whitelistRepo, auditService, appLogger)

	discoveryCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	verifier, err := auth.NewGoogleVerifier(
		discoveryCtx,
		cfg.Security.GoogleClientID,
		cfg.Security.GoogleIssuer,
		cfg.Security.GraceWindow(),
		appLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize google verifier: %w", err)
	}

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.SessionDuration())
	authService := auth.NewService(verifier, tokens, userRepo, whitelistService, bus, cfg.Security.WhitelistEnforced, appLogger)

	mailer := email.NewMailer(cfg.Mail, cfg.Server.BaseURL, appLogger)
	userService := user.NewService(userRepo, auditService, mailer, cfg.Security.InviteDomain, appLogger)
	taskService := task.NewService(taskRepo, auditService, appLogger)
	documentService := document.NewService(documentRepo, auditService, appLogger)

	// Handlers
	authHandler := auth.NewHandler(authService, appLogger)
	handlers := rest.Handlers{
		Auth:      authHandler,
		Guard:     auth.NewRoleGuard(authHandler.BaseHandler),
		Task:      task.NewHandler(taskService, appLogger),
		Document:  document.NewHandler(documentService, appLogger),
		User:      user.NewHandler(userService, appLogger),
		Whitelist: whitelist.NewHandler(whitelistService, appLogger),
		Audit:     audit.NewHandler(auditService, appLogger),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, handlers, cfg.Server.AllowedOrigins, appLogger)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		Router: router,
		Logger: appLogger,
	}, nil
}

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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

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
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	authPostgres "github.com/frahmantamala/timesheet-management/internal/auth/postgres"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/invoice"
	invoicePostgres "github.com/frahmantamala/timesheet-management/internal/invoice/postgres"
	"github.com/frahmantamala/timesheet-management/internal/issuetracker"
	"github.com/frahmantamala/timesheet-management/internal/oauth"
	"github.com/frahmantamala/timesheet-management/internal/schedule"
	schedulePostgres "github.com/frahmantamala/timesheet-management/internal/schedule/postgres"
	"github.com/frahmantamala/timesheet-management/internal/storage"
	"github.com/frahmantamala/timesheet-management/internal/task"
	taskPostgres "github.com/frahmantamala/timesheet-management/internal/task/postgres"
	"github.com/frahmantamala/timesheet-management/internal/transport/rest"
	"github.com/frahmantamala/timesheet-management/internal/user"
	userPostgres "github.com/frahmantamala/timesheet-management/internal/user/postgres"
	"github.com/frahmantamala/timesheet-management/internal/week"
	weekPostgres "github.com/frahmantamala/timesheet-management/internal/week/postgres"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
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

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(appLogger)
	registerAuditSubscriber(bus, appLogger)

	docStore, err := storage.NewLocalStore(config.Storage.Dir, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	// auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	identityProvider := oauth.NewClient(oauth.Config{
		TokenURL:     config.OAuth.TokenURL,
		UserInfoURL:  config.OAuth.UserInfoURL,
		ClientID:     config.OAuth.ClientID,
		ClientSecret: config.OAuth.ClientSecret,
		RedirectURL:  config.OAuth.RedirectURL,
		Timeout:      config.OAuth.Timeout,
	}, appLogger)
	authRepo := authPostgres.NewRepository(gdb)
	authService := auth.NewService(authRepo, tokenGen, identityProvider, config.Security.BCryptCost, appLogger)
	authHandler := auth.NewHandler(authService)
	rbac := auth.NewRBACAuthorization(appLogger)

	// users
	userService := user.NewService(userPostgres.NewUserRepository(gdb), appLogger)
	userHandler := user.NewHandler(userService)

	// weeks
	weekRepo := weekPostgres.NewWeekRepository(gdb)
	weekService := week.NewService(weekRepo, bus, appLogger)
	weekHandler := week.NewHandler(weekService)

	// tasks
	taskService := task.NewService(taskPostgres.NewTaskRepository(gdb), weekRepo, bus, appLogger)
	taskHandler := task.NewHandler(taskService)

	// invoices and payment evidence
	invoiceService := invoice.NewService(invoicePostgres.NewInvoiceRepository(gdb), docStore, bus, appLogger)
	invoiceHandler := invoice.NewHandler(invoiceService)

	// schedules
	scheduleService := schedule.NewService(schedulePostgres.NewScheduleRepository(gdb), userService, appLogger)
	scheduleHandler := schedule.NewHandler(scheduleService)

	// issue tracker
	trackerClient := issuetracker.NewClient(issuetracker.Config{
		BaseURL:  config.IssueTracker.BaseURL,
		APIToken: config.IssueTracker.APIToken,
		Timeout:  config.IssueTracker.Timeout,
	}, appLogger)
	issueHandler := issuetracker.NewHandler(trackerClient)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(
		router,
		db.DB,
		authHandler,
		rbac,
		userHandler,
		weekHandler,
		taskHandler,
		invoiceHandler,
		scheduleHandler,
		issueHandler,
		appLogger,
	)

	return &Dependencies{
		Config: config,
		Logger: appLogger,
		DB:     db,
		Router: router,
	}, nil
}

// registerAuditSubscriber writes every workflow event to the structured log.
func registerAuditSubscriber(bus *events.EventBus, log *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		log.InfoContext(ctx, "audit event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	bus.Subscribe(events.EventTaskReviewed, audit)
	bus.Subscribe(events.EventInvoiceStatusChanged, audit)
	bus.Subscribe(events.EventWeekStateChanged, audit)
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

// initGorm layers the ORM over the already-pooled connection. TranslateError
// maps driver unique-violation errors onto gorm.ErrDuplicatedKey, which the
// invoice numbering retry depends on.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/authlog"
	httpapi "github.com/aussiebroadwan/assettrack/internal/auth/http"
	"github.com/aussiebroadwan/assettrack/internal/auth/service"
	"github.com/aussiebroadwan/assettrack/internal/auth/session"
	"github.com/aussiebroadwan/assettrack/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/assettrack/pkg/cryptox"
	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/aussiebroadwan/assettrack/internal/auth/app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       *sqlite.Store
	keys     *SessionKeys
	sessions *session.Manager
	authLog  *authlog.Writer
	hasher   *cryptox.Pool
	limiter  *service.AttemptLimiter

	// Services
	authService         *service.AuthService
	mfaService          *service.MFAService
	setupService        *service.SetupService
	rolesService        *service.RolesService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "assettrack-auth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := httpx.SetTrustedProxies(app.cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	db, err := OpenStore(app.cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("database migrations applied successfully")

	keys, err := InitSessionKeys(app.cfg, app.logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.keys = keys

	if err := app.initServices(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := app.seedRoles(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"session_store", app.cfg.SessionStore,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// OpenStore opens the SQLite database and applies migrations. The CLI
// maintenance commands use it without starting the server.
func OpenStore(cfg Config) (*sqlite.Store, error) {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	backend, err := session.NewBackend(app.cfg.SessionStore, app.db)
	if err != nil {
		return fmt.Errorf("session store %q: %w", app.cfg.SessionStore, err)
	}
	if app.cfg.SessionStore == session.BackendMemory {
		app.logger.Warn("sessions are kept in memory and will not survive a restart")
	}

	app.sessions = session.NewManager(backend, app.db.Users(), app.keys.Signer, app.keys.Verifier, session.Config{
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
		Secure: app.cfg.SessionCookieSecure,
	})

	app.authLog = authlog.NewWriter(app.cfg.AuthLogDir)
	app.hasher = cryptox.NewPool(app.cfg.HashConcurrency)
	app.limiter = service.NewAttemptLimiter(app.cfg.MaxFailedAttempts, app.cfg.LockoutRefill)

	app.rolesService = &service.RolesService{Store: app.db}
	app.authService = &service.AuthService{
		Store:       app.db,
		Hasher:      app.hasher,
		Permissions: &service.PermissionResolver{Roles: app.db.Roles()},
		Limiter:     app.limiter,
	}
	app.mfaService = &service.MFAService{
		Store:   app.db,
		Tickets: app.sessions,
		Issuer:  app.cfg.Issuer,
	}
	app.setupService = &service.SetupService{
		Store:      app.db,
		Hasher:     app.hasher,
		Sessions:   app.sessions,
		ResetToken: app.cfg.SetupResetToken,
	}
	if app.cfg.SetupResetToken != "" {
		app.logger.Warn("setup reset endpoint enabled")
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.sessions,
		app.limiter,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// seedRoles creates or updates the roles from ROLES_FILE, if configured.
func (app *Application) seedRoles(ctx context.Context) error {
	if app.cfg.RolesFile == "" {
		return nil
	}

	defs, err := LoadRoles(app.cfg.RolesFile)
	if err != nil {
		return err
	}
	if err := app.rolesService.Seed(ctx, defs); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	app.logger.Info("roles seeded", "file", app.cfg.RolesFile, "count", len(defs))
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.Signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.Sessions = app.sessions
	router.AuthLog = app.authLog
	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.SetupService = app.setupService
	router.RolesService = app.rolesService
	router.AllowedOrigins = app.cfg.CORSAllowedOrigins
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

package cmd

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

	"github.com/frahmantamala/crm-assistant/api"
	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/activity"
	"github.com/frahmantamala/crm-assistant/internal/assistant"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	authpg "github.com/frahmantamala/crm-assistant/internal/auth/postgres"
	"github.com/frahmantamala/crm-assistant/internal/backend"
	"github.com/frahmantamala/crm-assistant/internal/category"
	categorypg "github.com/frahmantamala/crm-assistant/internal/category/postgres"
	"github.com/frahmantamala/crm-assistant/internal/command"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	contactpg "github.com/frahmantamala/crm-assistant/internal/contact/postgres"
	"github.com/frahmantamala/crm-assistant/internal/core/events"
	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/responder"
	"github.com/frahmantamala/crm-assistant/internal/session"
	"github.com/frahmantamala/crm-assistant/internal/transport"
	"github.com/frahmantamala/crm-assistant/internal/transport/middleware"
	"github.com/frahmantamala/crm-assistant/internal/transport/rest"
	"github.com/frahmantamala/crm-assistant/internal/user"
	userpg "github.com/frahmantamala/crm-assistant/internal/user/postgres"
	"github.com/frahmantamala/crm-assistant/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server exposing the assistant: commands, voice, chat and session context`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	Bus      *events.EventBus
	Sessions *session.Registry
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server",
		"address", addr,
		"backend", deps.Config.Backend.Mode,
		"assistant", deps.Config.Assistant.Provider)

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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Bus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	opts := rest.RouterOptions{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		Contract:       api.OpenAPI,
	}
	if deps.Config.Server.ValidateRequests {
		doc, err := middleware.LoadContract(context.Background(), api.OpenAPI)
		if err != nil {
			return err
		}
		validate, err := middleware.ValidateRequests(doc, deps.Logger)
		if err != nil {
			return err
		}
		opts.Validate = validate
	}

	rest.RegisterAllRoutes(deps.Router, deps.Handlers, opts, deps.Logger)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Setup(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	ctx := context.Background()
	base := transport.NewBaseHandler(lg)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authpg.NewRepository(gdb), tokens, lg)

	userService := user.NewService(userpg.NewPostgresRepo(db), lg)

	categoryService := category.NewService(categorypg.NewCategoryRepository(gdb), lg)
	vocabulary, err := categoryService.Vocabulary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	bus := events.NewEventBus(lg)
	audit := activity.NewLog(config.Session.AuditCapacity, lg)
	audit.Subscribe(bus)

	registry, err := command.NewRegistry(vocabulary)
	if err != nil {
		return nil, fmt.Errorf("failed to build command registry: %w", err)
	}
	interpreter := command.NewInterpreter(registry, command.NewEventDispatcher(bus), lg)

	contacts, users, dash := dataSources(config, contactpg.NewContactRepository(gdb), userService, audit, lg)

	llm, err := assistant.NewLLM(assistantConfig(config.Assistant))
	if err != nil {
		return nil, fmt.Errorf("failed to configure assistant: %w", err)
	}
	chat := assistant.NewService(llm, responder.New(vocabulary, lg), assistantConfig(config.Assistant), lg)

	systemPrompt := config.Assistant.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = assistant.DefaultSystemPrompt
	}
	sessions, err := session.NewRegistry(config.Session.MaxSessions, systemPrompt, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}
	refresher := session.NewRefresher(contacts, users, dash, config.Session.RefreshTimeout, lg)

	health := rest.NewHealthHandler(map[string]rest.Check{
		"postgres": func(ctx context.Context) (map[string]any, error) {
			if err := db.PingContext(ctx); err != nil {
				return nil, err
			}
			stats := db.Stats()
			return map[string]any{"open_connections": stats.OpenConnections, "in_use": stats.InUse}, nil
		},
		"sessions": func(context.Context) (map[string]any, error) {
			return map[string]any{"active": sessions.Len(), "audit_entries": audit.Len()}, nil
		},
	})

	return &Dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gdb,
		Router:   chi.NewRouter(),
		Bus:      bus,
		Sessions: sessions,
		Logger:   lg,
		Handlers: rest.Handlers{
			Auth:       auth.NewHandler(authService),
			RBAC:       authService.RBACAuthorization(),
			Users:      user.NewHandler(base, userService),
			Categories: category.NewHandler(base, categoryService),
			Commands:   command.NewHandler(base, interpreter),
			Sessions:   session.NewHandler(base, sessions, refresher, interpreter),
			Chat:       assistant.NewHandler(base, sessions, chat),
			Activity:   activity.NewHandler(base, audit, dash),
			Health:     health,
		},
	}, nil
}

// dataSources picks where session snapshots are loaded from. In rest mode the
// external CRM serves all three; otherwise the local database does, with the
// dashboard derived from the in-process activity log.
func dataSources(cfg *internal.Config, repo *contactpg.ContactRepository, users *user.Service, audit *activity.Log, lg *slog.Logger) (contact.Source, session.UserSource, dashboard.Source) {
	if cfg.Backend.Mode == internal.BackendModeREST {
		client := backend.NewClient(backend.Config{
			BaseURL: cfg.Backend.BaseURL,
			APIKey:  cfg.Backend.APIKey,
			Timeout: cfg.Backend.Timeout,
		}, lg)
		return client, client, client
	}
	return repo, users, activity.NewDashboard(audit, users)
}

func assistantConfig(c internal.AssistantConfig) assistant.Config {
	return assistant.Config{
		Provider:    assistant.Provider(c.Provider),
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		MaxHistory:  c.MaxHistory,
	}
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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both layers see one set of
// connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

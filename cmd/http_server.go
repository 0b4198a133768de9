package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/serfi-platform/user-management/internal"
	"github.com/serfi-platform/user-management/internal/auth"
	"github.com/serfi-platform/user-management/internal/core/events"
	"github.com/serfi-platform/user-management/internal/country"
	"github.com/serfi-platform/user-management/internal/transport/rest"
	"github.com/serfi-platform/user-management/internal/user"
	userPostgres "github.com/serfi-platform/user-management/internal/user/postgres"
	"github.com/serfi-platform/user-management/pkg/logger"
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
	Config         *internal.Config
	DB             *sqlx.DB
	Redis          *redis.Client
	Router         *chi.Mux
	AuthHandler    *auth.Handler
	UserHandler    *user.Handler
	CountryHandler *country.Handler
	Logger         *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	var allowedOrigins []string
	if deps.Config.Server.AllowedOrigins != "" {
		for _, origin := range strings.Split(deps.Config.Server.AllowedOrigins, ",") {
			allowedOrigins = append(allowedOrigins, strings.TrimSpace(origin))
		}
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Redis, deps.AuthHandler, deps.UserHandler, deps.CountryHandler, allowedOrigins, deps.Logger)

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
		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				slog.Error("Redis close error", "error", err)
			}
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

	if config.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	redisClient := initRedis(config.Cache, lg)

	eventBus := events.NewEventBus(lg)
	registerAuditSubscribers(eventBus, lg)

	userRepo := userPostgres.NewUserRepository(gormDB)
	projector := user.NewProjector(userRepo)

	hasher := auth.NewBCryptHasher(config.Security.BCryptCost)
	userService := user.NewService(userRepo, projector, hasher, eventBus, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userService, tokenGen, config.Security.BCryptCost, eventBus, lg)

	countryClient := country.NewClient(config.Country.APIURL, config.Country.Timeout)
	countryTTL := config.Country.CacheTTL
	if countryTTL <= 0 {
		countryTTL = 12 * time.Hour
	}
	countryCache := country.NewCache(redisClient, countryTTL)
	countryService := country.NewService(countryClient, countryCache, lg)

	return &Dependencies{
		Config:         config,
		Logger:         lg,
		DB:             db,
		Redis:          redisClient,
		Router:         chi.NewRouter(),
		AuthHandler:    auth.NewHandler(authService),
		UserHandler:    user.NewHandler(userService),
		CountryHandler: country.NewHandler(countryService),
	}, nil
}

// initRedis connects to Redis when configured. The cache is optional, so a
// missing or unreachable Redis only degrades caching instead of failing boot.
func initRedis(cfg internal.CacheConfig, lg *slog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		lg.Info("redis not configured, caching disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		lg.Warn("redis unreachable, caching disabled", "error", err, "addr", cfg.RedisAddr)
		_ = client.Close()
		return nil
	}

	return client
}

// registerAuditSubscribers logs domain events for the audit trail.
func registerAuditSubscribers(bus *events.EventBus, lg *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		lg.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt())
		return nil
	}

	bus.Subscribe(events.EventTypeUserCreated, audit)
	bus.Subscribe(events.EventTypeUserDeleted, audit)
	bus.Subscribe(events.EventTypeUserLoggedIn, audit)
	bus.Subscribe(events.EventTypePasswordChanged, audit)
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
	if cfg.ConnMaxLifetime > 0 {
		dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

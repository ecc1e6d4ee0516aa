package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/rokotuskortti/vaccination-erecord/internal/config"
	"github.com/rokotuskortti/vaccination-erecord/internal/database"
	"github.com/rokotuskortti/vaccination-erecord/internal/dates"
	"github.com/rokotuskortti/vaccination-erecord/internal/dose"
	"github.com/rokotuskortti/vaccination-erecord/internal/email"
	httpServer "github.com/rokotuskortti/vaccination-erecord/internal/http"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
	"github.com/rokotuskortti/vaccination-erecord/internal/reminder"
	"github.com/rokotuskortti/vaccination-erecord/internal/session"
	"github.com/rokotuskortti/vaccination-erecord/internal/user"
	"github.com/rokotuskortti/vaccination-erecord/internal/vaccine"
)

// @title           Rokotuskortti API
// @version         1.0
// @description     Personal vaccination record service with booster reminders.

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment(), cfg.LogLevel)
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Date pattern is config-driven and shared by handlers and emails
	codec, err := dates.NewCodec(cfg.DateFormat)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	// Initialize database connection and run migrations
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	vaccineRepo := vaccine.NewRepository(db)
	doseRepo := dose.NewRepository(db)

	// Initialize session layer
	sessionStore := session.NewRedisStore(redisClient)
	sessionManager := session.NewManager(
		user.NewDirectory(userRepo),
		sessionStore,
		logger,
		cfg.Session.Secret,
		cfg.Session.MaxAge,
	)
	sessionMW := session.NewMiddleware(sessionManager, cfg.Session.Cookie)
	sessionHandler := session.NewHandler(sessionManager, cfg.Session.Cookie, !cfg.Server.IsDevelopment())

	// Initialize email service and reminder scanner
	emailService := email.NewService(cfg.Email)
	scanner := reminder.NewScanner(doseRepo, emailService, codec, logger, cfg.Reminder.DefaultLeadDays)

	scannerCtx, stopScanner := context.WithCancel(context.Background())
	defer stopScanner()
	go scanner.Run(scannerCtx, cfg.Reminder.CheckInterval)

	// Initialize router
	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Session: sessionHandler,
		User:    user.NewHandler(userRepo),
		Vaccine: vaccine.NewHandler(vaccineRepo),
		Dose:    dose.NewHandler(doseRepo, codec),
	}, sessionMW, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received shutdown signal", "signal", sig.String())

		stopScanner()

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB opens the database, verifies the connection, and brings the
// schema up to date before returning a Bun DB instance.
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := database.RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

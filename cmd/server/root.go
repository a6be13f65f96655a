package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/smartcity/parking/internal/config"
	"github.com/smartcity/parking/internal/delivery/http"
	"github.com/smartcity/parking/internal/history"
	"github.com/smartcity/parking/internal/logger"
	"github.com/smartcity/parking/internal/metrics"
	"github.com/smartcity/parking/internal/repository/postgres"
	"github.com/smartcity/parking/internal/service"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "Parking occupancy forecast API",
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON)")
}

func runServer(cmd *cobra.Command, args []string) error {
	log := logger.New("server")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log.Debugw("configuration loaded", map[string]any{
		"data_path":  cfg.ML.DataPath,
		"model_path": cfg.ML.ModelPath,
		"use_model":  cfg.ML.ModelEnabled(),
		"database":   cfg.Database.URL != "",
	})

	// Historical series: a malformed dataset is fatal
	store, err := history.LoadFile(cfg.ML.DataPath)
	if err != nil {
		return fmt.Errorf("load history %s: %w", cfg.ML.DataPath, err)
	}
	start, end := store.Range()
	log.Infof("Loaded %d observations for %d zones (%s .. %s)",
		store.Len(), len(store.Zones()), start.Format(time.DateTime), end.Format(time.DateTime))

	// Database connection
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err == nil {
			err = pool.Ping(ctx)
		}
		if err != nil {
			log.Warnf("Could not connect to database: %v", err)
			log.Warnf("Running with in-memory repository only")
			if pool != nil {
				pool.Close()
			}
			pool = nil
		} else {
			defer pool.Close()
			log.Infof("Connected to PostgreSQL")
		}
	}

	// Dependency Injection: Repositories
	var dataRepo service.DataRepository
	if pool != nil {
		pg := postgres.NewPostgresRepository(pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Warnf("%v", err)
		}
		dataRepo = pg
	} else {
		dataRepo = postgres.NewMockRepository(service.DefaultZones())
	}

	registry, err := buildRegistry(ctx, dataRepo, log)
	if err != nil {
		return fmt.Errorf("zone registry: %w", err)
	}

	// Dependency Injection: Services
	recorder, err := metrics.NewPromRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	model := loadModel(ctx, cfg.ML, log)
	engine := service.NewPredictionEngine(service.NewFeatureExtractor(registry, store), model, recorder, logger.New("prediction"))
	forecastSvc := service.NewForecastService(engine, registry, dataRepo, logger.New("forecast"))
	events := service.NewEventCatalog(service.DefaultEvents())

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Parking Forecast API v1.0",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := http.NewHandler(forecastSvc, registry, events, store, dataRepo)
	http.SetupRoutes(app, handler, prometheus.DefaultGatherer)

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		log.Infof("Server starting on :%s (%s)", cfg.Server.Port, cfg.Server.Env)
		listenErr <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-listenErr:
		forecastSvc.WaitBackground()
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
	}

	log.Infof("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Warnf("Server forced to shutdown: %v", err)
	}
	forecastSvc.WaitBackground()
	log.Infof("Server exited gracefully")
	return nil
}

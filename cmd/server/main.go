package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/smartcity/parking/internal/config"
	"github.com/smartcity/parking/internal/logger"
	"github.com/smartcity/parking/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.New("server").Infof("No .env file found, using system environment")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRegistry prefers the repository's zone table and falls back to the
// built-in zones when it is unreachable or empty.
func buildRegistry(ctx context.Context, repo service.DataRepository, log logger.Logger) (*service.ZoneRegistry, error) {
	zones, err := repo.ListZones(ctx)
	if err != nil {
		log.Warnf("list zones: %v; using built-in zones", err)
		zones = nil
	}
	if len(zones) == 0 {
		zones = service.DefaultZones()
	}
	return service.NewZoneRegistry(zones)
}

// loadModel returns nil when no model is usable; predictions then degrade to
// zone averages.
func loadModel(ctx context.Context, cfg config.MLConfig, log logger.Logger) service.Model {
	if !cfg.ModelEnabled() {
		log.Infof("Model disabled, serving zone averages")
		return nil
	}
	if cfg.ServiceURL != "" {
		remote := service.NewRemoteModel(cfg.ServiceURL)
		if err := remote.Health(ctx); err != nil {
			log.Warnf("ML service not reachable yet: %v", err)
		}
		log.Infof("Using remote model at %s", cfg.ServiceURL)
		return remote
	}
	m, err := service.LoadLinearModel(cfg.ModelPath)
	if err != nil {
		log.Warnf("No model loaded: %v", err)
		return nil
	}
	log.Infof("Loaded model %s trained on %d rows", m.Name(), m.TrainingRows)
	return m
}

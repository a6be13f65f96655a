package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcity/parking/internal/config"
	"github.com/smartcity/parking/internal/history"
	"github.com/smartcity/parking/internal/service"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "datagen",
	Short:        "Synthetic parking history, model training and diagnostics",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadExtractor reads a history file and pairs it with the built-in zones
func loadExtractor(path string) (*service.FeatureExtractor, *history.Store, error) {
	store, err := history.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	registry, err := service.NewZoneRegistry(service.DefaultZones())
	if err != nil {
		return nil, nil, err
	}
	return service.NewFeatureExtractor(registry, store), store, nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smartcity/parking/internal/logger"
	"github.com/smartcity/parking/internal/service"
)

var (
	trainData  string
	trainModel string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the linear occupancy model on a history file",
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainData, "data", "", "history JSON file (defaults to ml.data_path)")
	trainCmd.Flags().StringVar(&trainModel, "model", "", "model artifact to write (defaults to ml.model_path)")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	log := logger.New("train")
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if trainData == "" {
		trainData = cfg.ML.DataPath
	}
	if trainModel == "" {
		trainModel = cfg.ML.ModelPath
	}

	extractor, store, err := loadExtractor(trainData)
	if err != nil {
		return err
	}
	log.Infof("Training on %d observations from %s", store.Len(), trainData)

	m, err := service.Train(extractor, store)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(trainModel); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := m.Save(trainModel); err != nil {
		return err
	}
	log.Infof("Wrote %s (%s)", trainModel, m.Name())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "intercept  %+.4f\n", m.Intercept)
	for i, name := range m.FeatureNames {
		fmt.Fprintf(out, "%-10s %+.4f\n", name, m.Weights[i])
	}
	return nil
}

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/service"
)

var (
	inspectData  string
	inspectAt    string
	inspectZones []string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Explain lag coverage and fallbacks for a target instant",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectData, "data", "", "history JSON file (defaults to ml.data_path)")
	inspectCmd.Flags().StringVar(&inspectAt, "at", "", "target instant (defaults to the current hour)")
	inspectCmd.Flags().StringSliceVar(&inspectZones, "zones", nil, "zone codes to inspect (defaults to all)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if inspectData == "" {
		inspectData = cfg.ML.DataPath
	}
	target := time.Now().UTC().Truncate(time.Hour)
	if inspectAt != "" {
		if target, err = domain.ParseTimestamp(inspectAt); err != nil {
			return err
		}
	}

	extractor, store, err := loadExtractor(inspectData)
	if err != nil {
		return err
	}
	d, err := service.Diagnose(extractor, store, target, inspectZones...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "History:  %s .. %s\n", domain.FormatTimestamp(d.DataStart), domain.FormatTimestamp(d.DataEnd))
	fmt.Fprintf(out, "Target:   %s (%s, hour %d)\n", domain.FormatTimestamp(target), target.Weekday(), target.Hour())
	if d.Gap24h > 0 {
		fmt.Fprintf(out, "24h lag:  %d days after the last observation\n", int(d.Gap24h/(24*time.Hour)))
	} else {
		fmt.Fprintln(out, "24h lag:  inside history")
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ZONE\tSLOT N\tSLOT MEAN\tSLOT STD\tLAG 1H/24H/168H\tZONE AVG\tFALLBACK")
	for _, z := range d.Zones {
		lags := make([]string, len(z.LagMatches))
		for i, n := range z.LagMatches {
			lags[i] = fmt.Sprint(n)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\t%s\t%.3f\t%.2f\n",
			z.ZoneCode, z.SlotRecords, z.SlotMean, z.SlotStdDev, strings.Join(lags, "/"), z.ZoneAverage, z.FallbackRatio)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if d.Collapsed() {
		fmt.Fprintln(out, "\nEvery lag falls back to the zone average: predictions differ only by calendar features and zone statistics.")
	}
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/transitopt/config"
	"github.com/kilianp07/transitopt/core/model"
	"github.com/kilianp07/transitopt/infra/dataset"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and input tables without running",
	RunE:  check,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func countRows[T any](name, path string, load func(io.Reader) (T, error), count func(T) int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck
	data, err := load(f)
	if err != nil {
		return err
	}
	fmt.Printf("%-12s %6d rows  %s\n", name, count(data), path)
	return nil
}

func check(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := countRows("routes", cfg.Data.RoutesPath, dataset.LoadRoutes, func(r []model.Route) int { return len(r) }); err != nil {
		return err
	}
	if cfg.Data.Synthetic() {
		fmt.Println("demand data: synthetic")
		return nil
	}
	if err := countRows("demand", cfg.Data.DemandPath, dataset.LoadDemand, func(d model.DemandTable) int { return len(d) }); err != nil {
		return err
	}
	if err := countRows("stop demand", cfg.Data.StopDemandPath, dataset.LoadStopDemand, func(d model.StopDemandTable) int { return len(d) }); err != nil {
		return err
	}
	return countRows("travel times", cfg.Data.TravelTimesPath, dataset.LoadTravelTimes, func(t model.TravelTimeTable) int { return len(t) })
}

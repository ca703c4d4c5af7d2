package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/transitopt/app"
	"github.com/kilianp07/transitopt/config"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Solve the allocation without simulating",
	RunE:  optimizeOnly,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a stored allocation through the simulator",
	RunE:  simulateOnly,
}

func init() {
	rootCmd.AddCommand(optimizeCmd, simulateCmd)
}

func newService() (*app.Service, context.Context, context.CancelFunc, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stop()
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		stop()
		return nil, nil, nil, err
	}
	return svc, ctx, stop, nil
}

func optimizeOnly(cmd *cobra.Command, args []string) error {
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	return svc.RunAllocationOnly(ctx)
}

func simulateOnly(cmd *cobra.Command, args []string) error {
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	return svc.Simulate(ctx)
}

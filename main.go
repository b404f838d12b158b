package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nordlink/dispatch/internal/server"
	"github.com/nordlink/dispatch/pkg/dispatch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "dispatch",
	Short:   "Nordlink Dispatch - Multi-carrier shipment booking service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the service catalogs of the configured carriers",
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	st, err := initStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	registry := initRegistry(cfg, logger)
	dispatcher := dispatch.New(st, registry, senderFromConfig(cfg), logger)

	logger.Info("Starting Nordlink Dispatch",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("carriers", registry.Names()),
	)

	srv := server.New(server.Config{Port: cfg.Port}, registry, dispatcher, st, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	registry := initRegistry(cfg, logger)
	catalogs, errs := registry.RefreshCatalogs(ctx)
	for _, err := range errs {
		logger.Warn("Catalog refresh failed", zap.Error(err))
	}

	for name, entries := range catalogs {
		fmt.Printf("%s:\n", name)
		for _, entry := range entries {
			fmt.Printf("  %-8s %-12s %s (%s)\n",
				entry.PartnerCode, entry.ServiceCode, entry.ServiceName, entry.CarrierName)
		}
	}
	return nil
}

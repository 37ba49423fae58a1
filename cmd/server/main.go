package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quietroom/chatplane/internal/app"
	"github.com/quietroom/chatplane/internal/config"
	"github.com/quietroom/chatplane/internal/log"
)

func main() {
	var configPath string
	var overrides config.Config

	root := &cobra.Command{
		Use:   "chatplane-server",
		Short: "Runs the chatplane websocket chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(overrides, configPath)
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config.yaml")
	root.Flags().StringVar(&overrides.Addr, "listen", "", "HTTP/websocket listen address, overrides config.yaml")
	root.Flags().StringVar(&overrides.DatabasePath, "database", "", "path to the statistics SQLite database, overrides config.yaml")
	root.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error), overrides config.yaml")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(overrides config.Config, configPath string) error {
	bootLogger := log.New("info")

	fileCfg, _, err := config.Load(bootLogger, configPath)
	if err != nil {
		bootLogger.Error().Err(err).Msg("failed to load config")
		return err
	}
	fileCfg.UpdateFrom(overrides)

	logger := log.New(fileCfg.LogLevel)

	application, err := app.New(&fileCfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build application")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", fileCfg.Addr).Msg("starting chatplane server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

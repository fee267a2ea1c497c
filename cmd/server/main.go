package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lanchat/internal/app"
	"github.com/vovakirdan/lanchat/internal/config"
	"github.com/vovakirdan/lanchat/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	overrides  config.Config
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          "lanchat-server [port]",
		Short:        "LAN text chat relay",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				addr, err := portAddr(args[0])
				if err != nil {
					return err
				}
				f.overrides.Addr = addr
			}
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "path to config file (default ./config.yaml)")
	cmd.Flags().StringVar(&f.overrides.Addr, "addr", "", "chat listen address, e.g. :8080")
	cmd.Flags().StringVar(&f.overrides.AdminAddr, "admin-addr", "", "admin HTTP listen address (disabled when empty)")
	cmd.Flags().StringVar(&f.overrides.LogLevel, "log-level", "", "debug, info, warn or error")

	return cmd
}

func portAddr(arg string) (string, error) {
	port, err := strconv.Atoi(arg)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port %q", arg)
	}
	return ":" + arg, nil
}

func run(parent context.Context, f flags) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootLogger := log.New(f.overrides.LogLevel)
	cfg, path, err := config.Load(bootLogger, f.configPath)
	if err != nil {
		bootLogger.Error().Err(err).Str("path", path).Msg("failed to load config")
		return err
	}
	cfg.UpdateFrom(f.overrides)

	logger := log.New(cfg.LogLevel)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		return err
	}

	logger.Info().
		Str("addr", application.Addr().String()).
		Str("config", path).
		Int("max_clients", cfg.MaxClients).
		Str("store", cfg.StoreDriver).
		Msg("starting lanchat server")

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vishnuvardhan833199/chattify/internal/app"
	"github.com/vishnuvardhan833199/chattify/internal/config"
	"github.com/vishnuvardhan833199/chattify/internal/log"
)

func main() {
	var (
		configPath string
		addr       string
		logLevel   string
		dbPath     string
	)

	rootCmd := &cobra.Command{
		Use:   "chattify-server",
		Short: "Chattify chat server: direct messages, presence and call signaling",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(logLevel)

			cfg, path, err := config.Load(logger, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Info().Str("config", path).Msg("configuration loaded")

			// Flags override file and environment values.
			if addr != "" {
				cfg.Addr = addr
			}
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger = log.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting chattify server")
			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

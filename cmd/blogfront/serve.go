package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/blogfront"
)

var (
	serveAddr string
	serveAPI  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the front-end server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := blogfront.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if serveAPI != "" {
			cfg.APIBaseURL = serveAPI
		}

		logger, err := newLogger(cfg.Debug)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		app := blogfront.New(cfg, blogfront.WithLogger(logger))
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.Echo.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", zap.Error(err))
			}
		}()

		return app.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveAPI, "api", "", "blog API base URL (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

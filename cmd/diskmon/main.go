// Package main is the entry point for the diskmon CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nuclearlighters/diskmon/internal/api"
	"github.com/nuclearlighters/diskmon/internal/config"
	"github.com/nuclearlighters/diskmon/internal/history"
	"github.com/nuclearlighters/diskmon/internal/monitor"
	"github.com/nuclearlighters/diskmon/internal/notify"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dryRun bool
	var strict bool

	root := &cobra.Command{
		Use:   "diskmon",
		Short: "Disk health monitor built on udisks2 and S.M.A.R.T. data",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if dryRun {
				cfg.DryRun = true
			}
			if strict {
				cfg.Strict = true
			}
			setupLogging(cfg.LogLevel)
			cmd.SetContext(withSettings(cmd.Context(), cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "read dump and partition samples from files instead of the live system")
	root.PersistentFlags().BoolVar(&strict, "strict", false, "fail the pass on drive/block-device mismatches instead of skipping")

	root.AddCommand(newMonitorCmd(), newReportCmd(), newServeCmd())
	return root
}

type settingsKey struct{}

func withSettings(ctx context.Context, cfg *config.Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, cfg)
}

func settingsFrom(ctx context.Context) *config.Settings {
	return ctx.Value(settingsKey{}).(*config.Settings)
}

func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run one monitor pass: collect, evaluate rules and notify",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := settingsFrom(cmd.Context())

			store := openStore(cfg)
			defer store.Close()

			runner := monitor.New(cfg, notify.New(cfg), store)
			res, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			if len(res.Alerts) > 0 {
				for _, a := range res.Alerts {
					fmt.Fprintln(cmd.OutOrStdout(), a)
				}
			}
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the HTML disk report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := settingsFrom(cmd.Context())

			runner := monitor.New(cfg, notify.New(cfg), nil)
			html, err := runner.Report(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				fmt.Fprint(cmd.OutOrStdout(), html)
				return nil
			}
			if err := os.WriteFile(output, []byte(html), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			log.Info().Str("path", output).Msg("Report written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to this file instead of stdout")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve disk state and alert history over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := settingsFrom(cmd.Context())

			log.Info().
				Str("version", cfg.Version).
				Str("listen", cfg.ListenAddr()).
				Msg("Starting disk monitor API server")

			store := openStore(cfg)
			defer store.Close()

			runner := monitor.New(cfg, notify.New(cfg), store)
			server := api.NewServer(cfg, runner, store)

			srv := &http.Server{
				Addr:         cfg.ListenAddr(),
				Handler:      server.Routes(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				log.Info().Str("addr", cfg.ListenAddr()).Msg("HTTP server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("HTTP server error")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info().Msg("Shutting down server...")

			// Give outstanding requests 10 seconds to complete
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("Server forced to shutdown")
			}

			log.Info().Msg("Server stopped")
			return nil
		},
	}
}

// openStore opens the history database. Failures degrade to running
// without history rather than aborting the pass.
func openStore(cfg *config.Settings) *history.Store {
	store, err := history.Open(cfg.DatabasePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DatabasePath).Msg("History disabled")
		return nil
	}
	return store
}

// setupLogging configures zerolog based on log level.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

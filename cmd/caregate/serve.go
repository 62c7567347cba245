package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/caregate/caregate"
	"github.com/caregate/caregate/pkg/adapters/audit"
	httpAdapter "github.com/caregate/caregate/pkg/adapters/http"
	redisAdapter "github.com/caregate/caregate/pkg/adapters/redis"
	"github.com/caregate/caregate/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the control plane HTTP server",
	Long:  `Starts the medical control plane, exposing the tool, escalation, and safety sandwich boundaries over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, err := loadConfig(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg, verbose)

		opts := []caregate.Option{
			caregate.WithLogger(logger),
			caregate.WithSandwichConfig(cfg.Sandwich),
		}

		var sink ports.AuditSink
		if cfg.Audit.SQLitePath != "" {
			sqlite, err := audit.OpenSQLite(cmd.Context(), cfg.Audit.SQLitePath)
			if err != nil {
				fmt.Printf("Error opening audit store: %v\n", err)
				os.Exit(1)
			}
			defer sqlite.Close()
			sink = sqlite
		} else {
			sink = audit.NewMemorySink()
			logger.Warn("no audit.sqlite_path configured, audit records are in-memory only")
		}
		if len(cfg.Audit.PHIPatterns) > 0 {
			sink = audit.NewPHIMasking(cfg.Audit.PHIPatterns)(sink)
		}
		opts = append(opts, caregate.WithAuditSink(sink))

		if cfg.Redis.Addr != "" {
			client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
			opts = append(opts, caregate.WithDeduper(redisAdapter.NewDeduper(client, cfg.Redis.Prefix)))
		}

		plane, err := caregate.New(opts...)
		if err != nil {
			fmt.Printf("Error initializing control plane: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: httpAdapter.NewHandler(plane, plane.Metrics().Handler()),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("control plane listening", "addr", cfg.Listen)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
				fmt.Printf("Could not stop server gracefully: %v\n", err)
				os.Exit(1)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

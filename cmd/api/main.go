package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/phonebook/internal/config"
	"github.com/zhouzirui/phonebook/internal/handler"
	"github.com/zhouzirui/phonebook/internal/logger"
	"github.com/zhouzirui/phonebook/internal/model/contact"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		port       int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "phonebook",
		Short:         "Serve the phonebook REST API",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loadDotEnv(slog.Default(), ".env")

			if configPath == "" {
				configPath = os.Getenv("PHONEBOOK_CONFIG")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logger.New(&cfg.Log)
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := contact.NewMemoryStore(contact.Seed())
			router := handler.NewRouter(store, metrics.NewSet(), log)

			return startServer(ctx, cfg.Server, router, log)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file (env PHONEBOOK_CONFIG)")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "port to listen on (env PHONEBOOK_PORT)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log from debug, info, warn or error (env LOG_LEVEL)")
	return cmd
}

// loadDotEnv applies the variables in paths. A missing or unreadable file is
// only a warning.
func loadDotEnv(log *slog.Logger, paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Warn("failed to load .env file, continuing with system environment variables only", "err", err)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: serverCfg.ReadHeaderTimeout.Duration,
		IdleTimeout:       serverCfg.IdleTimeout.Duration,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	log.Info("phonebook listening", "addr", srv.Addr)
	if err := runServer(ctx, srv, serverCfg.ShutdownTimeout.Duration); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("server closed")
	return nil
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("could not shutdown the server", "err", err)
		}
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

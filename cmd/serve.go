package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mspro-labs/cafe-critic/internal/config"
	"mspro-labs/cafe-critic/internal/csrf"
	"mspro-labs/cafe-critic/internal/handlers"
	"mspro-labs/cafe-critic/internal/metrics"
	"mspro-labs/cafe-critic/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Web UI server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context) error {
	// 1. Setup
	appCfg, err := config.GetAppConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := appCfg.RequireSecret(); err != nil {
		return err
	}
	serverCfg, err := config.LoadServerConfig(appCfg.ConfigPath)
	if err != nil {
		return err
	}
	if appCfg.Addr != "" {
		serverCfg.Addr = appCfg.Addr
	}

	// 2. Store must be reachable before we serve anything.
	store, closeStore, err := openStore(appCfg)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	defer closeStore()

	// 3. Pre-build templates and collaborators
	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}
	protector, err := csrf.New(appCfg.SecretKey, serverCfg.CSRFTTL)
	if err != nil {
		return err
	}
	h := handlers.New(store, renderer, protector, metrics.New(), logger)

	// 4. Start Server
	server := &http.Server{
		Addr:         serverCfg.Addr,
		Handler:      h.Routes(),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web UI started", zap.String("addr", serverCfg.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

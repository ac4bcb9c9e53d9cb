package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/db"
	"github.com/badlog/internal/handler"
	"github.com/badlog/internal/logx"
	"github.com/badlog/internal/router"
	"github.com/badlog/internal/seed"
	"github.com/badlog/internal/service"
	"github.com/badlog/internal/storage"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address, overrides LISTEN_ADDR")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	content := seed.MustLoad()
	gdb, mode := openBackend(cfg)

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	result := service.NewSeeder(gdb, mode, content).InitializeBackend(initCtx)
	cancel()
	if result.Connected {
		logx.Info("server", "seed", "backend connected, %d seed posts inserted", result.Inserted)
	}

	if gdb != nil && !mode.Local() {
		if err := db.EnsureUser(gdb, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
			logx.Warn("server", "ensure_user", "%v", err)
		}
	}

	store := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPath, mode)
	api := handler.NewAPI(gdb, mode, content, store, cfg)

	monitor := service.NewMonitor(api.Probe(), cfg.ProbeSchedule)
	if err := monitor.Start(); err != nil {
		return err
	}
	defer monitor.Stop()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.WithCORS(cfg, router.SetupRouter(cfg, api)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info("server", "listen", "serving on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logx.Info("server", "shutdown", "shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

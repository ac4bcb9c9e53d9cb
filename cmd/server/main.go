package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
	"github.com/badlog/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "badlog",
	Short: "badlog 博客与作品集后端",
	Long: `badlog serves the blog, gallery and about pages over a JSON API.
When the database cannot be reached it keeps serving the bundled seed
content in read-only local mode.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address, overrides LISTEN_ADDR")
	rootCmd.AddCommand(serveCmd, seedCmd, subscribersCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openBackend 连接数据库；失败时进程进入本地模式并返回 nil。
func openBackend(cfg config.AppConfig) (*gorm.DB, *service.BackendMode) {
	mode := service.NewBackendMode(cfg.ForceLocalMode)
	if mode.Local() {
		logx.Info("server", "backend", "local mode forced by configuration")
		return nil, mode
	}

	err := db.Init(db.Options{
		Driver:   cfg.DatabaseDriver,
		Path:     cfg.DatabasePath,
		DSN:      cfg.DatabaseDSN,
		LogLevel: cfg.DatabaseLogLevel,
	})
	if err != nil {
		logx.Error("server", "backend", "failed to initialize database: %v", err)
		mode.EnableLocal(err.Error())
		return nil, mode
	}
	return db.DB, mode
}

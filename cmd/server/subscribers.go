package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/seed"
	"github.com/badlog/internal/service"
)

var exportOutput string

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "订阅者管理",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出活跃订阅者 CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		gdb, mode := openBackend(cfg)
		subscribers := service.NewSubscriberService(gdb, mode, seed.MustLoad())

		var w io.Writer = cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOutput, err)
			}
			defer f.Close()
			w = f
		}

		count, err := subscribers.ExportActiveCSV(cmd.Context(), w)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d subscribers\n", count)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, defaults to stdout")
	subscribersCmd.AddCommand(exportCmd)
}

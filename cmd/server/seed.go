package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/seed"
	"github.com/badlog/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "在文章表为空时导入种子内容后退出",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		gdb, mode := openBackend(cfg)
		if mode.Local() {
			return errors.New("backend unavailable, nothing seeded")
		}

		result := service.NewSeeder(gdb, mode, seed.MustLoad()).InitializeBackend(cmd.Context())
		if !result.Connected {
			return errors.New("seeding failed, see log for details")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d seed posts\n", result.Inserted)
		return nil
	},
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/badlog/internal/config"
	"github.com/badlog/internal/db"
)

var (
	userName     string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "后台账号管理",
}

// ensureUserCmd 创建后台账号，已存在时不做修改。未指定参数时使用 SUPER_ROOT_USER_NAME 与 SUPER_ROOT_PASSWORD。
var ensureUserCmd = &cobra.Command{
	Use:   "ensure",
	Short: "确保后台管理员账号存在",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		if userName == "" {
			userName = cfg.SuperRootUserName
		}
		if userPassword == "" {
			userPassword = cfg.SuperRootPassword
		}
		if userName == "" || userPassword == "" {
			return errors.New("username and password are required")
		}

		gdb, mode := openBackend(cfg)
		if mode.Local() {
			return errors.New("backend unavailable, user not created")
		}
		if err := db.EnsureUser(gdb, userName, userPassword); err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %s is ready\n", userName)
		return nil
	},
}

func init() {
	ensureUserCmd.Flags().StringVar(&userName, "username", "", "admin username")
	ensureUserCmd.Flags().StringVar(&userPassword, "password", "", "admin password")
	userCmd.AddCommand(ensureUserCmd)
}

package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Options 描述后端数据库的连接方式。
type Options struct {
	Driver   string // sqlite 或 postgres
	Path     string // sqlite 文件路径
	DSN      string // postgres 连接串
	LogLevel string // silent, error, warn, info
}

// Init 打开数据库连接、执行自动迁移，并写入全局 DB。
func Init(opts Options) error {
	gdb, err := Open(opts)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 根据驱动建立 gorm 连接，不执行迁移。
func Open(opts Options) (*gorm.DB, error) {
	config := &gorm.Config{Logger: newLogger(opts.LogLevel)}

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "postgres":
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, errors.New("database dsn is required for postgres")
		}
		return gorm.Open(postgres.Open(opts.DSN), config)
	default:
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "badlog.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		return gorm.Open(sqlite.Open(path), config)
	}
}

// Models 返回需要自动迁移的全部模型。
func Models() []any {
	return []any{
		&User{},
		&Post{},
		&FeaturedPointer{},
		&GalleryItem{},
		&Comment{},
		&Subscriber{},
		&Experience{},
		&SkillCategory{},
		&HomeInfo{},
		&Statistic{},
		&ConnectionCheck{},
	}
}

// Migrate 为所有模型创建或更新表结构。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func newLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "info":
		logLevel = logger.Info
	default:
		logLevel = logger.Warn
	}

	return logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})
}

// NewID 生成文档主键。
func NewID() string {
	return uuid.NewString()
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}

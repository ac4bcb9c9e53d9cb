package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/seed"
)

var testDBSeq atomic.Int64

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), testDBSeq.Add(1))
	gdb, err := db.Open(db.Options{Path: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// setupUnreachableDB 返回一个底层连接已关闭的 gorm 实例，所有查询都会失败。
func setupUnreachableDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb := setupServiceTestDB(t)
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("resolve sql db: %v", err)
	}
	sqlDB.Close()
	return gdb
}

func testSeed(t *testing.T) *seed.Content {
	t.Helper()
	content, err := seed.Load()
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	return content
}

func postIDs(posts []db.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func strPtr(s string) *string { return &s }

type memoryFlag struct {
	counted bool
}

func (f *memoryFlag) Counted() bool      { return f.counted }
func (f *memoryFlag) MarkCounted() error { f.counted = true; return nil }

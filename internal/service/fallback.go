package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/badlog/internal/logx"
)

// 仓储层的统一降级规则：
//   - 读：本地模式或后端出错时返回种子数据；ListAll 结果为空时同样返回种子。
//   - 写：本地模式下返回成功形态的结果但不修改任何数据；后端出错时返回 "" 或 false。
// 调用方永远拿不到原始的后端错误。

// readAll 执行列表查询并应用降级规则。
func readAll[T any](ctx context.Context, gdb *gorm.DB, mode *BackendMode, module string, seed func() []T, query func(*gorm.DB) ([]T, error)) []T {
	if mode.Local() || gdb == nil {
		return seed()
	}
	items, err := query(gdb.WithContext(ctx))
	if err != nil {
		if cancelled(ctx, err) {
			return nil
		}
		logx.Error(module, "list", "backend read failed, serving seed: %v", err)
		return seed()
	}
	if len(items) == 0 {
		return seed()
	}
	return items
}

// readFiltered 与 readAll 相同，但空结果是合法结果，不回退到种子。
func readFiltered[T any](ctx context.Context, gdb *gorm.DB, mode *BackendMode, module, op string, seed func() []T, query func(*gorm.DB) ([]T, error)) []T {
	if mode.Local() || gdb == nil {
		return seed()
	}
	items, err := query(gdb.WithContext(ctx))
	if err != nil {
		if cancelled(ctx, err) {
			return nil
		}
		logx.Error(module, op, "backend read failed, serving seed: %v", err)
		return seed()
	}
	return items
}

// readOne 按 ID 读取单条记录：后端不存在或出错时在种子中查找，两者都没有时返回 nil。
func readOne[T any](ctx context.Context, gdb *gorm.DB, mode *BackendMode, module, id string, seed func(string) (T, bool)) *T {
	fromSeed := func() *T {
		if item, ok := seed(id); ok {
			return &item
		}
		return nil
	}

	if mode.Local() || gdb == nil {
		return fromSeed()
	}

	var item T
	err := gdb.WithContext(ctx).Where("id = ?", id).First(&item).Error
	switch {
	case err == nil:
		return &item
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fromSeed()
	case cancelled(ctx, err):
		return nil
	default:
		logx.Error(module, "get", "backend read of %s failed, serving seed: %v", id, err)
		return fromSeed()
	}
}

// stored 报告记录是否真实存在于后端，供写操作前的存在性检查使用。
// 本地模式下写入本就不落库，按种子判断。
func stored(ctx context.Context, gdb *gorm.DB, mode *BackendMode, module string, model any, id string, inSeed func(string) bool) (bool, error) {
	if mode.Local() || gdb == nil {
		return inSeed(id), nil
	}
	var total int64
	if err := gdb.WithContext(ctx).Model(model).Where("id = ?", id).Count(&total).Error; err != nil {
		if !cancelled(ctx, err) {
			logx.Error(module, "exists", "%s: %v", id, err)
		}
		return false, err
	}
	return total > 0, nil
}

// writeAdd 创建记录并返回 ID。本地模式下返回伪造的 ID。
func writeAdd(ctx context.Context, gdb *gorm.DB, mode *BackendMode, module string, create func(*gorm.DB) (string, error)) (string, bool) {
	if mode.Local() || gdb == nil {
		id := localID()
		logx.Info(module, "add", "local mode, write skipped (id %s)", id)
		return id, true
	}
	id, err := create(gdb.WithContext(ctx))
	if err != nil {
		logx.Error(module, "add", "%v", err)
		return "", false
	}
	return id, true
}

// writeOp 执行更新或删除。本地模式下直接报告成功。
func writeOp(ctx context.Context, gdb *gorm.DB, mode *BackendMode, module, op, id string, apply func(*gorm.DB) error) bool {
	if mode.Local() || gdb == nil {
		logx.Info(module, op, "local mode, write to %s skipped", id)
		return true
	}
	if err := apply(gdb.WithContext(ctx)); err != nil {
		logx.Error(module, op, "%s: %v", id, err)
		return false
	}
	return true
}

func localID() string {
	return fmt.Sprintf("local-%d", time.Now().UnixNano())
}

// cancelled 报告调用方是否已放弃这次读取，此时结果会被丢弃，不记录后端故障。
func cancelled(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}

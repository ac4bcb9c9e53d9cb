package service

import (
	"sync/atomic"

	"github.com/badlog/internal/logx"
)

// BackendMode 记录是否已放弃后端、改为只读种子数据。只会从 false 变为 true，进程重启前不会复位。
type BackendMode struct {
	local atomic.Bool
}

// NewBackendMode 创建模式对象，forceLocal 为 true 时直接进入本地模式。
func NewBackendMode(forceLocal bool) *BackendMode {
	mode := &BackendMode{}
	if forceLocal {
		mode.EnableLocal("forced by configuration")
	}
	return mode
}

// Local 报告当前是否处于本地模式。nil 视为远程模式。
func (m *BackendMode) Local() bool {
	return m != nil && m.local.Load()
}

// EnableLocal 切换到本地模式，仅在第一次切换时记录日志。
func (m *BackendMode) EnableLocal(reason string) {
	if m == nil {
		return
	}
	if m.local.CompareAndSwap(false, true) {
		logx.Warn("backend", "enable_local_mode", "switching to local seed data: %s", reason)
	}
}

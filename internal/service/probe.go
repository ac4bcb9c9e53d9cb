package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
)

var errNoDatabase = errors.New("database not configured")

// Probe 对后端做一次轻量读取以判断是否可达。
type Probe struct {
	db   *gorm.DB
	mode *BackendMode
}

// NewProbe creates a Probe instance.
func NewProbe(gdb *gorm.DB, mode *BackendMode) *Probe {
	return &Probe{db: gdb, mode: mode}
}

// CheckConnection 返回后端是否可达。失败时同时把进程切换到本地模式。
// 调用方已取消时只返回 false，不视为后端故障。
func (p *Probe) CheckConnection(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if err := p.ping(ctx); err != nil {
		if cancelled(ctx, err) {
			return false
		}
		logx.Error("backend", "check_connection", "%v", err)
		p.mode.EnableLocal(err.Error())
		return false
	}
	return true
}

func (p *Probe) ping(ctx context.Context) error {
	if p.db == nil {
		return errNoDatabase
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	var checks []db.ConnectionCheck
	if err := p.db.WithContext(ctx).Limit(1).Find(&checks).Error; err != nil {
		return fmt.Errorf("read connection_checks: %w", err)
	}
	return nil
}

// Monitor 按计划重复执行探测。它只能把模式切换到本地，不会切回。
type Monitor struct {
	probe    *Probe
	schedule string

	mu   sync.Mutex
	cron *cron.Cron
}

// NewMonitor 创建监控器，schedule 为空时 Start 不做任何事。
func NewMonitor(probe *Probe, schedule string) *Monitor {
	return &Monitor{probe: probe, schedule: strings.TrimSpace(schedule)}
}

// Start registers the cron job and starts the scheduler.
func (m *Monitor) Start() error {
	if m.schedule == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(m.schedule, m.run); err != nil {
		return fmt.Errorf("schedule backend probe %q: %w", m.schedule, err)
	}
	c.Start()
	m.cron = c
	logx.Info("backend", "monitor", "probe scheduled at %s", m.schedule)
	return nil
}

// Stop 停止调度并等待正在执行的探测结束。
func (m *Monitor) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (m *Monitor) run() {
	if m.probe.mode.Local() {
		return
	}
	m.probe.CheckConnection(context.Background())
}

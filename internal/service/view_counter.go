package service

import (
	"context"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
)

const viewModule = "views"

// MsgViewCountUnavailable 是读取浏览次数失败时展示给用户的信息。
const MsgViewCountUnavailable = "無法獲取瀏覽次數"

// SessionFlag 是“本次会话已计数”的标记，由会话存储实现。
type SessionFlag interface {
	Counted() bool
	MarkCounted() error
}

// ViewCount 是一次计数请求的结果。
type ViewCount struct {
	Count int64  `json:"count"`
	Error string `json:"error,omitempty"`
}

// ViewCounter 维护全站浏览次数，每个会话最多计一次，并把新值推送给订阅者。
type ViewCounter struct {
	db   *gorm.DB
	mode *BackendMode

	mu     sync.Mutex
	nextID int
	subs   map[int]chan int64
}

// NewViewCounter creates a ViewCounter instance.
func NewViewCounter(gdb *gorm.DB, mode *BackendMode) *ViewCounter {
	return &ViewCounter{db: gdb, mode: mode, subs: make(map[int]chan int64)}
}

// Track 在会话尚未计数时原子地加一并标记会话，然后返回当前值。
func (c *ViewCounter) Track(ctx context.Context, flag SessionFlag) ViewCount {
	if c.mode.Local() || c.db == nil {
		return ViewCount{Error: MsgViewCountUnavailable}
	}

	if !flag.Counted() {
		if err := c.increment(ctx); err != nil {
			logx.Error(viewModule, "increment", "%v", err)
			return ViewCount{Error: MsgViewCountUnavailable}
		}
		if err := flag.MarkCounted(); err != nil {
			logx.Warn(viewModule, "mark_counted", "%v", err)
		}
		count, err := c.current(ctx)
		if err != nil {
			logx.Error(viewModule, "read", "%v", err)
			return ViewCount{Error: MsgViewCountUnavailable}
		}
		c.broadcast(count)
		return ViewCount{Count: count}
	}

	count, err := c.current(ctx)
	if err != nil {
		logx.Error(viewModule, "read", "%v", err)
		return ViewCount{Error: MsgViewCountUnavailable}
	}
	return ViewCount{Count: count}
}

// Current 读取当前值而不计数。
func (c *ViewCounter) Current(ctx context.Context) ViewCount {
	if c.mode.Local() || c.db == nil {
		return ViewCount{Error: MsgViewCountUnavailable}
	}
	count, err := c.current(ctx)
	if err != nil {
		logx.Error(viewModule, "read", "%v", err)
		return ViewCount{Error: MsgViewCountUnavailable}
	}
	return ViewCount{Count: count}
}

// Subscribe 返回一个接收最新计数的通道，以及取消订阅的函数。慢速订阅者只会收到最新值。
func (c *ViewCounter) Subscribe() (<-chan int64, func()) {
	ch := make(chan int64, 1)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *ViewCounter) increment(ctx context.Context) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stat := db.Statistic{ID: db.PageViewsStatisticID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stat).Error; err != nil {
			return err
		}
		return tx.Model(&db.Statistic{}).
			Where("id = ?", db.PageViewsStatisticID).
			UpdateColumn("count", gorm.Expr("count + ?", 1)).Error
	})
}

func (c *ViewCounter) current(ctx context.Context) (int64, error) {
	var stat db.Statistic
	err := c.db.WithContext(ctx).Where("id = ?", db.PageViewsStatisticID).Limit(1).Find(&stat).Error
	return stat.Count, err
}

func (c *ViewCounter) broadcast(count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- count:
		default:
			// 丢弃旧值，只保留最新计数
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- count:
			default:
			}
		}
	}
}

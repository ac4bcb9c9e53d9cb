package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
	"github.com/badlog/internal/seed"
)

const subscriberModule = "subscribers"

const (
	MsgSubscribed         = "感謝您的訂閱！"
	MsgAlreadySubscribed  = "此郵箱已訂閱我們的通訊"
	MsgInactiveSubscriber = "此郵箱已在我們的列表中，但未激活"
	MsgSubscribeFailed    = "訂閱時發生錯誤，請稍後再試"
)

var ErrNoActiveSubscribers = errors.New("no active subscribers to export")

// SubscribeResult 是订阅操作的业务结果，重复订阅不是错误。
type SubscribeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubscriberService 管理电子报订阅者。
type SubscriberService struct {
	db   *gorm.DB
	mode *BackendMode
	seed *seed.Content
	now  func() time.Time
}

// NewSubscriberService creates a SubscriberService instance.
func NewSubscriberService(gdb *gorm.DB, mode *BackendMode, content *seed.Content) *SubscriberService {
	return &SubscriberService{db: gdb, mode: mode, seed: content, now: time.Now}
}

// Subscribe 登记新的订阅者。已存在的邮箱一律拒绝，未激活的也不会被重新激活。
func (s *SubscriberService) Subscribe(ctx context.Context, email string) SubscribeResult {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.mode.Local() || s.db == nil {
		logx.Info(subscriberModule, "subscribe", "local mode, write skipped for %s", email)
		return SubscribeResult{Success: true, Message: MsgSubscribed}
	}

	q := s.db.WithContext(ctx)
	var existing db.Subscriber
	err := q.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.Active {
			return SubscribeResult{Success: false, Message: MsgAlreadySubscribed}
		}
		return SubscribeResult{Success: false, Message: MsgInactiveSubscriber}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		logx.Error(subscriberModule, "subscribe", "%v", err)
		return SubscribeResult{Success: false, Message: MsgSubscribeFailed}
	}

	subscriber := db.Subscriber{Email: email, SubscribeDate: s.now(), Active: true}
	if err := q.Create(&subscriber).Error; err != nil {
		logx.Error(subscriberModule, "subscribe", "%v", err)
		return SubscribeResult{Success: false, Message: MsgSubscribeFailed}
	}
	return SubscribeResult{Success: true, Message: MsgSubscribed}
}

// ListAll returns subscribers, newest first.
func (s *SubscriberService) ListAll(ctx context.Context) []db.Subscriber {
	return readFiltered(ctx, s.db, s.mode, subscriberModule, "list", s.seed.Subscribers, func(q *gorm.DB) ([]db.Subscriber, error) {
		var subscribers []db.Subscriber
		err := q.Order("subscribe_date desc").Find(&subscribers).Error
		return subscribers, err
	})
}

// SetActive 修改订阅者的激活状态。
func (s *SubscriberService) SetActive(ctx context.Context, id string, active bool) bool {
	return writeOp(ctx, s.db, s.mode, subscriberModule, "set_active", id, func(q *gorm.DB) error {
		return applyPatch(q, &db.Subscriber{}, id, map[string]any{"active": active})
	})
}

// Delete removes a subscriber.
func (s *SubscriberService) Delete(ctx context.Context, id string) bool {
	return writeOp(ctx, s.db, s.mode, subscriberModule, "delete", id, func(q *gorm.DB) error {
		return q.Where("id = ?", id).Delete(&db.Subscriber{}).Error
	})
}

// ExportActiveCSV 把活跃订阅者写成 CSV，表头为「電子郵件,訂閱日期」。
func (s *SubscriberService) ExportActiveCSV(ctx context.Context, w io.Writer) (int, error) {
	var active []db.Subscriber
	for _, sub := range s.ListAll(ctx) {
		if sub.Active {
			active = append(active, sub)
		}
	}
	if len(active) == 0 {
		return 0, ErrNoActiveSubscribers
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"電子郵件", "訂閱日期"}); err != nil {
		return 0, err
	}
	for _, sub := range active {
		if err := writer.Write([]string{sub.Email, sub.SubscribeDate.Format("2006/1/2")}); err != nil {
			return 0, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(active), nil
}

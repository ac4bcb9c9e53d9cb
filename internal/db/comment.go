package db

import (
	"time"

	"gorm.io/gorm"
)

// Comment 是登录用户在文章下的留言，CreatedAt 由服务端写入。
type Comment struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	PostID     string    `gorm:"size:64;index;not null" json:"postId"`
	UserID     string    `gorm:"size:128;index;not null" json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate 在缺少主键时生成 uuid。
func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// Subscriber 是电子报订阅者。Email 的唯一性在写入时检查，不依赖约束。
type Subscriber struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Email         string    `gorm:"size:255;index;not null" json:"email"`
	SubscribeDate time.Time `json:"subscribeDate"`
	Active        bool      `json:"active"`
}

// BeforeCreate 在缺少主键时生成 uuid。
func (s *Subscriber) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}

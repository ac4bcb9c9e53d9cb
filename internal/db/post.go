package db

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ContentFormatMarkdown = "markdown"
	ContentFormatHTML     = "html"
)

// Post 定义了文章模型
type Post struct {
	ID            string                      `gorm:"primaryKey;size:64" json:"id"`
	Title         string                      `gorm:"not null" json:"title"`
	Slug          string                      `gorm:"size:255;index" json:"slug"`
	Excerpt       string                      `gorm:"type:text" json:"excerpt"`
	Content       string                      `gorm:"type:text" json:"content"`
	ContentFormat string                      `gorm:"size:16" json:"contentFormat"`
	PublishedDate time.Time                   `gorm:"index" json:"publishedDate"`
	Category      string                      `gorm:"size:100;index" json:"category,omitempty"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	CoverImage    string                      `json:"coverImage,omitempty"`
	Archived      bool                        `json:"archived"`
	// SeedKey 仅由初始化流程写入，唯一索引保证同一篇种子文章最多导入一次。
	SeedKey   *string   `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate 在缺少主键时生成 uuid。
func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.ContentFormat == "" {
		p.ContentFormat = ContentFormatMarkdown
	}
	return nil
}

// HasTag reports whether the post carries the given tag.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FeaturedPointerID 是精选指针记录的固定主键。
const FeaturedPointerID = "featured"

// FeaturedPointer 指向当前唯一的精选文章，PostID 为空表示没有精选。
type FeaturedPointer struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	PostID    *string   `gorm:"size:64" json:"postId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定自定义表名。
func (FeaturedPointer) TableName() string {
	return "featured_pointers"
}

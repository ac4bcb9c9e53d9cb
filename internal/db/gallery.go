package db

import (
	"time"

	"gorm.io/gorm"
)

// GalleryItem 定义作品集条目模型，Date 保持原样字符串
type GalleryItem struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `gorm:"type:text" json:"description" yaml:"description"`
	ImageURL    string    `json:"imageUrl" yaml:"imageUrl"`
	ImageWidth  int       `json:"imageWidth,omitempty" yaml:"imageWidth"`
	ImageHeight int       `json:"imageHeight,omitempty" yaml:"imageHeight"`
	Category    string    `gorm:"size:100;index" json:"category" yaml:"category"`
	Date        string    `gorm:"size:32" json:"date" yaml:"date"`
	URL         string    `json:"url,omitempty" yaml:"url"`
	CreatedAt   time.Time `json:"-" yaml:"-"`
	UpdatedAt   time.Time `json:"-" yaml:"-"`
}

// BeforeCreate 在缺少主键时生成 uuid。
func (g *GalleryItem) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = NewID()
	}
	return nil
}

package db

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ExperienceTypeEducation = "education"
	ExperienceTypeWork      = "work"
	ExperienceTypeActivity  = "activity"
)

// Experience 是关于页的经历条目，Order 越小越靠前
type Experience struct {
	ID           string `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Organization string `json:"organization" yaml:"organization"`
	Duration     string `json:"duration" yaml:"duration"`
	Description  string `gorm:"type:text" json:"description" yaml:"description"`
	Type         string `gorm:"size:20" json:"type" yaml:"type"`
	Order        int    `gorm:"column:sort_order;index" json:"order" yaml:"order"`
	Color        string `gorm:"size:30" json:"color,omitempty" yaml:"color"`
}

// BeforeCreate 在缺少主键时生成 uuid。
func (e *Experience) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}

// SkillCategory 按类别分组的技能列表
type SkillCategory struct {
	ID       string                      `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Category string                      `json:"category" yaml:"category"`
	Items    datatypes.JSONSlice[string] `json:"items" yaml:"items"`
	Color    string                      `gorm:"size:30" json:"color" yaml:"color"`
	Order    int                         `gorm:"column:sort_order;index" json:"order" yaml:"order"`
}

// TableName 指定自定义表名。
func (SkillCategory) TableName() string {
	return "skills"
}

// BeforeCreate 在缺少主键时生成 uuid。
func (s *SkillCategory) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}

// HomeInfo 是首页的文字区块，主键为固定的语义 ID（如 what-i-do）
type HomeInfo struct {
	ID          string `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Content     string `gorm:"type:text" json:"content" yaml:"content"`
	AccentColor string `gorm:"size:30" json:"accentColor" yaml:"accentColor"`
	Order       int    `gorm:"column:sort_order;index" json:"order" yaml:"order"`
}

// TableName 指定自定义表名。
func (HomeInfo) TableName() string {
	return "home_info"
}

package db

import "time"

// PageViewsStatisticID 是全站浏览计数的固定主键。
const PageViewsStatisticID = "pageViews"

// Statistic 保存一个命名计数器。
type Statistic struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Count     int64     `gorm:"default:0" json:"count"`
	UpdatedAt time.Time `json:"lastUpdated"`
}

// TableName 指定自定义表名。
func (Statistic) TableName() string {
	return "statistics"
}

// ConnectionCheck 是连通性探测读取的表，内容无关紧要。
type ConnectionCheck struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (ConnectionCheck) TableName() string {
	return "connection_checks"
}

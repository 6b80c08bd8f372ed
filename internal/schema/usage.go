package schema

import (
	"time"

	"github.com/yuqie6/WellMirror/internal/model"
)

// UsageSnapshot 某日聚合后的使用指标（对应 digitalWellbeingTodayUsage）
type UsageSnapshot struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	Date        string          `gorm:"size:10;uniqueIndex" json:"date"`
	Usage       model.UsageData `gorm:"serializer:json;type:text" json:"usage"`
	UnlockCount int             `gorm:"default:0" json:"unlockCount"`
	Source      string          `gorm:"size:20" json:"source"` // import | manual
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定表名
func (UsageSnapshot) TableName() string {
	return "usage_snapshots"
}

// AppUsage 单应用当日使用记录（原生桥导出的行）
// 数据量级：万级/年
type AppUsage struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	Date           string    `gorm:"size:10;uniqueIndex:uniq_app_usage_day"`
	PackageName    string    `gorm:"size:255;uniqueIndex:uniq_app_usage_day"`
	AppName        string    `gorm:"size:255"`
	UsageSeconds   int       `gorm:"default:0"`
	FirstTimeStamp int64     `gorm:"default:0"` // Unix 毫秒
	LastTimeStamp  int64     `gorm:"default:0"` // Unix 毫秒
	Category       string    `gorm:"size:20;index"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (AppUsage) TableName() string {
	return "app_usages"
}

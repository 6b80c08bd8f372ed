package schema

import (
	"time"

	"github.com/yuqie6/WellMirror/internal/model"
)

// 评语来源
const (
	FeedbackSourceAI    = "ai"
	FeedbackSourceLocal = "local"
)

// DailyReport 每日报告，一天一条，创建后不再修改
// 数据量级：百级/年
type DailyReport struct {
	ID               int64                  `gorm:"primaryKey;autoIncrement" json:"-"`
	UID              string                 `gorm:"size:36;uniqueIndex" json:"uid"`
	Date             string                 `gorm:"size:10;uniqueIndex" json:"date"` // YYYY-MM-DD
	Score            int                    `gorm:"default:0" json:"score"`          // 0-100
	BaseScore        int                    `gorm:"default:0" json:"baseScore"`
	BonusScore       int                    `gorm:"default:0" json:"bonusScore"` // 连续打卡加分
	Breakdown        map[string]int         `gorm:"serializer:json;type:text" json:"breakdown"`
	Usage            model.UsageData        `gorm:"serializer:json;type:text" json:"usage"`
	Notifications    model.NotificationData `gorm:"serializer:json;type:text" json:"notifications"`
	CheckIn          model.CheckInData      `gorm:"serializer:json;type:text" json:"checkIn"`
	AIComment        string                 `gorm:"type:text" json:"aiComment"`
	Suggestion       string                 `gorm:"type:text" json:"suggestion"`
	ExperienceGained int                    `gorm:"default:0" json:"experienceGained"`
	FeedbackSource   string                 `gorm:"size:10" json:"feedbackSource"` // ai | local
	CreatedAt        time.Time              `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定表名
func (DailyReport) TableName() string {
	return "daily_reports"
}

package dto

import (
	"encoding/json"

	"github.com/yuqie6/WellMirror/internal/model"
)

// 注意：本包用于承载"对外契约"的 DTO（与前端/HTTP API 保持稳定）。
// 不要在这里放 GORM/持久化细节；内部持久化 schema 请见 internal/schema；业务逻辑收敛在 internal/service。

type CurrentScoreDTO struct {
	Date    string          `json:"date"`
	Score   int             `json:"score"`
	Message string          `json:"message"`
	Usage   model.UsageData `json:"usage"`
	HasData bool            `json:"has_data"`
}

type ProfileDTO struct {
	Level                 int                  `json:"level"`
	Experience            int                  `json:"experience"`
	ExperienceToNextLevel int                  `json:"experienceToNextLevel"`
	TotalDays             int                  `json:"totalDays"`
	CurrentStreak         int                  `json:"currentStreak"`
	Onboarding            model.OnboardingData `json:"onboarding"`
}

// CheckInRequestDTO 打卡请求；checkIn 接受网页端或移动端任一形态，由 handler 适配
type CheckInRequestDTO struct {
	Date          string                 `json:"date,omitempty"`
	CheckIn       json.RawMessage        `json:"checkIn"`
	Notifications model.NotificationData `json:"notifications"`
}

type ReportDTO struct {
	UID              string                 `json:"uid"`
	Date             string                 `json:"date"`
	Score            int                    `json:"score"`
	BaseScore        int                    `json:"baseScore"`
	BonusScore       int                    `json:"bonusScore"`
	Breakdown        map[string]int         `json:"breakdown"`
	Usage            model.UsageData        `json:"usage"`
	Notifications    model.NotificationData `json:"notifications"`
	CheckIn          model.CheckInData      `json:"checkIn"`
	AIComment        string                 `json:"aiComment"`
	Suggestion       string                 `json:"suggestion"`
	ExperienceGained int                    `json:"experienceGained"`
	FeedbackSource   string                 `json:"feedbackSource"`
	Emoji            string                 `json:"emoji"`
	CreatedAt        int64                  `json:"createdAt"` // Unix 毫秒
}

type CheckInResponseDTO struct {
	Report  ReportDTO  `json:"report"`
	Profile ProfileDTO `json:"profile"`
}

// UsageRequestDTO 手动写入使用指标或提交原生桥导出的行（二选一）
type UsageRequestDTO struct {
	Date        string           `json:"date,omitempty"`
	Usage       *model.UsageData `json:"usage,omitempty"`
	Rows        []model.UsageRow `json:"rows,omitempty"`
	UnlockCount int              `json:"unlockCount,omitempty"`
}

type UsageSnapshotDTO struct {
	Date        string          `json:"date"`
	Usage       model.UsageData `json:"usage"`
	UnlockCount int             `json:"unlockCount"`
	Source      string          `json:"source"`
}

type AppStatsDTO struct {
	PackageName  string `json:"package_name"`
	AppName      string `json:"app_name"`
	Category     string `json:"category"`
	UsageSeconds int    `json:"usage_seconds"`
}

type DateRequestDTO struct {
	Date string `json:"date"`
}

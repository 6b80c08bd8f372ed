package model

import (
	"fmt"
	"strings"
	"time"
)

// UsageData 当日使用指标（由使用数据聚合得到，评分只读）
type UsageData struct {
	TotalTime      int     `json:"totalTime"`      // 总使用时长（分钟）
	LateNightTime  int     `json:"lateNightTime"`  // 就寝时间之后的使用（分钟）
	LongSessions   int     `json:"longSessions"`   // 20 分钟以上的长时段次数
	ShortFormRatio float64 `json:"shortFormRatio"` // 短视频占比 0-1
	SNSRatio       float64 `json:"snsRatio"`       // 社交占比 0-1
	GameRatio      float64 `json:"gameRatio"`      // 游戏占比 0-1
}

// NotificationData 通知统计，仅用于评语，不参与评分
type NotificationData struct {
	ImportantCount   int  `json:"importantCount"`
	LowPriorityCount int  `json:"lowPriorityCount"`
	HasOverload      bool `json:"hasOverload"`
}

// MaxOnboardingPatterns 引导阶段最多选择的习惯数
const MaxOnboardingPatterns = 2

// OnboardingData 引导设置，完成后不可修改
type OnboardingData struct {
	TargetScreenTime int      `json:"targetScreenTime"` // 目标使用时长（分钟）
	TargetBedTime    string   `json:"targetBedTime"`    // HH:MM
	Patterns         []string `json:"patterns"`         // 想减少的使用习惯
}

// Validate 校验引导数据
func (o OnboardingData) Validate() error {
	if o.TargetScreenTime <= 0 {
		return fmt.Errorf("targetScreenTime 必须大于 0，当前为 %d", o.TargetScreenTime)
	}
	if _, err := ParseClock(o.TargetBedTime); err != nil {
		return fmt.Errorf("targetBedTime 无效: %w", err)
	}
	if len(o.Patterns) > MaxOnboardingPatterns {
		return fmt.Errorf("patterns 最多 %d 项，当前为 %d", MaxOnboardingPatterns, len(o.Patterns))
	}
	return nil
}

// BedTimeMinutes 就寝时间距当日零点的分钟数；格式错误时返回 -1
func (o OnboardingData) BedTimeMinutes() int {
	m, err := ParseClock(o.TargetBedTime)
	if err != nil {
		return -1
	}
	return m
}

// ParseClock 解析 HH:MM 为当日分钟数
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("时间格式应为 HH:MM: %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// UserProfile 用户成长档案
type UserProfile struct {
	Level                 int            `json:"level"`
	Experience            int            `json:"experience"`
	ExperienceToNextLevel int            `json:"experienceToNextLevel"`
	TotalDays             int            `json:"totalDays"`
	CurrentStreak         int            `json:"currentStreak"`
	Onboarding            OnboardingData `json:"onboarding"`
}

// NewUserProfile 以引导数据创建初始档案
func NewUserProfile(onboarding OnboardingData) UserProfile {
	return UserProfile{
		Level:                 1,
		Experience:            0,
		ExperienceToNextLevel: 100,
		TotalDays:             0,
		CurrentStreak:         0,
		Onboarding:            onboarding,
	}
}

package schema

import (
	"time"

	"github.com/yuqie6/WellMirror/internal/model"
)

// ProfileRecord 用户成长档案
// 表内仅维护单行（ID=1），对应本地存储键 digitalWellbeingProfile。
type ProfileRecord struct {
	ID                    int                  `gorm:"primaryKey" json:"-"`
	Level                 int                  `gorm:"default:1" json:"level"`
	Experience            int                  `gorm:"default:0" json:"experience"`
	ExperienceToNextLevel int                  `gorm:"default:100" json:"experienceToNextLevel"`
	TotalDays             int                  `gorm:"default:0" json:"totalDays"`
	CurrentStreak         int                  `gorm:"default:0" json:"currentStreak"`
	Onboarding            model.OnboardingData `gorm:"serializer:json;type:text" json:"onboarding"`
	CreatedAt             time.Time            `gorm:"autoCreateTime" json:"-"`
	UpdatedAt             time.Time            `gorm:"autoUpdateTime" json:"-"`
}

// TableName 指定表名
func (ProfileRecord) TableName() string {
	return "profiles"
}

// ToModel 转换为领域模型
func (p *ProfileRecord) ToModel() model.UserProfile {
	return model.UserProfile{
		Level:                 p.Level,
		Experience:            p.Experience,
		ExperienceToNextLevel: p.ExperienceToNextLevel,
		TotalDays:             p.TotalDays,
		CurrentStreak:         p.CurrentStreak,
		Onboarding:            p.Onboarding,
	}
}

// NewProfileRecord 从领域模型构建记录
func NewProfileRecord(p model.UserProfile) *ProfileRecord {
	return &ProfileRecord{
		ID:                    1,
		Level:                 p.Level,
		Experience:            p.Experience,
		ExperienceToNextLevel: p.ExperienceToNextLevel,
		TotalDays:             p.TotalDays,
		CurrentStreak:         p.CurrentStreak,
		Onboarding:            p.Onboarding,
	}
}

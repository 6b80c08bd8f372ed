package service

import (
	"math"

	"github.com/yuqie6/WellMirror/internal/model"
)

// 评分类别
const (
	CategoryScreenTime   = "screenTime"
	CategoryLateNight    = "lateNight"
	CategoryLongSessions = "longSessions"
	CategoryShortForm    = "shortForm"
	CategoryCheckIn      = "checkIn"
)

// Categories 分项的展示顺序
var Categories = []string{CategoryScreenTime, CategoryLateNight, CategoryLongSessions, CategoryShortForm, CategoryCheckIn}

// 每个类别满分
const (
	categoryMax   = 20
	bandStep      = 5
	liveScoreBase = 80 // 不含打卡的四项满分
	maxTotalScore = 100
	streakBonus   = 2
)

// ScoreResult 每日得分
type ScoreResult struct {
	BaseScore  int            `json:"baseScore"`
	BonusScore int            `json:"bonusScore"`
	TotalScore int            `json:"totalScore"`
	Breakdown  map[string]int `json:"breakdown"`
}

// usageBands 四项使用指标的分档（日终得分与实时得分共用）
type usageBands struct {
	ScreenTime   int
	LateNight    int
	LongSessions int
	ShortForm    int
}

func (b usageBands) sum() int {
	return b.ScreenTime + b.LateNight + b.LongSessions + b.ShortForm
}

// bandUsage 计算使用指标的四项分档
func bandUsage(usage model.UsageData, onboarding model.OnboardingData) usageBands {
	return usageBands{
		ScreenTime:   screenTimeBand(usage.TotalTime, onboarding.TargetScreenTime),
		LateNight:    penaltyBand(usage.LateNightTime / 10),
		LongSessions: longSessionBand(usage.LongSessions),
		ShortForm:    penaltyBand(int(math.Floor(usage.ShortFormRatio * 10))),
	}
}

// screenTimeBand 实际/目标比值分档；目标非正时无法比较，记 0 分
func screenTimeBand(totalMinutes, targetMinutes int) int {
	if targetMinutes <= 0 {
		return 0
	}
	ratio := float64(totalMinutes) / float64(targetMinutes)
	switch {
	case ratio <= 1:
		return 20
	case ratio <= 1.2:
		return 15
	case ratio <= 1.5:
		return 10
	case ratio <= 2:
		return 5
	default:
		return 0
	}
}

// penaltyBand 每满一档扣 5 分，最低 0
func penaltyBand(blocks int) int {
	return clampInt(categoryMax-blocks*bandStep, 0, categoryMax)
}

func longSessionBand(count int) int {
	switch {
	case count <= 0:
		return 20
	case count == 1:
		return 15
	case count == 2:
		return 10
	case count == 3:
		return 5
	default:
		return 0
	}
}

// checkInBand 目标达成度分档；1 与任何越界值都落入 0 分
func checkInBand(goalAchievement int) int {
	switch goalAchievement {
	case 5:
		return 20
	case 4:
		return 15
	case 3:
		return 10
	case 2:
		return 5
	default:
		return 0
	}
}

// StreakBonus 连续打卡加分，不设上限（只在总分处截断）
func StreakBonus(currentStreak int) int {
	if currentStreak <= 0 {
		return 0
	}
	return currentStreak * streakBonus
}

// CalculateDailyScore 计算日终得分
// notifications 只用于评语，不参与评分。
func CalculateDailyScore(
	usage model.UsageData,
	_ model.NotificationData,
	checkIn model.CheckInData,
	onboarding model.OnboardingData,
	currentStreak int,
) ScoreResult {
	bands := bandUsage(usage, onboarding)
	checkInScore := checkInBand(checkIn.GoalAchievement)

	base := bands.sum() + checkInScore
	bonus := StreakBonus(currentStreak)

	return ScoreResult{
		BaseScore:  base,
		BonusScore: bonus,
		TotalScore: min(maxTotalScore, base+bonus),
		Breakdown: map[string]int{
			CategoryScreenTime:   bands.ScreenTime,
			CategoryLateNight:    bands.LateNight,
			CategoryLongSessions: bands.LongSessions,
			CategoryShortForm:    bands.ShortForm,
			CategoryCheckIn:      checkInScore,
		},
	}
}

// CalculateCurrentScore 不含打卡的实时得分，80 分制折算为 100 分制
func CalculateCurrentScore(usage model.UsageData, onboarding model.OnboardingData) int {
	subtotal := bandUsage(usage, onboarding).sum()
	return int(math.Round(float64(subtotal) / liveScoreBase * maxTotalScore))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

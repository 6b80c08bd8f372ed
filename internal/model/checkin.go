package model

import (
	"encoding/json"
	"fmt"
)

// CheckInData 每日打卡（规范形态）
// 移动端/AI 形态见 MobileCheckIn，两者只通过显式适配互转。
type CheckInData struct {
	Mood            int    `json:"mood"`            // 1-5
	GoalAchievement int    `json:"goalAchievement"` // 1-5
	SelfRating      int    `json:"selfRating"`      // 1-5
	Memo            string `json:"memo,omitempty"`
}

// Validate 校验三项评分均在 1-5
func (c CheckInData) Validate() error {
	checks := []struct {
		name string
		v    int
	}{
		{"mood", c.Mood},
		{"goalAchievement", c.GoalAchievement},
		{"selfRating", c.SelfRating},
	}
	for _, ck := range checks {
		if ck.v < 1 || ck.v > 5 {
			return fmt.Errorf("%s 必须在 1-5 之间，当前为 %d", ck.name, ck.v)
		}
	}
	return nil
}

// MobileCheckIn 移动端/AI 服务使用的打卡形态
type MobileCheckIn struct {
	Mood         int    `json:"mood"`
	Satisfaction int    `json:"satisfaction"`
	GoalAchieved bool   `json:"goalAchieved"`
	Memo         string `json:"memo,omitempty"`
}

// ToCheckIn 移动端形态 → 规范形态
// goalAchieved=true 记为 5，false 记为 1。
func (m MobileCheckIn) ToCheckIn() CheckInData {
	goal := 1
	if m.GoalAchieved {
		goal = 5
	}
	return CheckInData{
		Mood:            clampRating(m.Mood),
		GoalAchievement: goal,
		SelfRating:      clampRating(m.Satisfaction),
		Memo:            m.Memo,
	}
}

// ToMobile 规范形态 → 移动端形态（goalAchievement >= 4 视为达成）
func (c CheckInData) ToMobile() MobileCheckIn {
	return MobileCheckIn{
		Mood:         c.Mood,
		Satisfaction: c.SelfRating,
		GoalAchieved: c.GoalAchievement >= 4,
		Memo:         c.Memo,
	}
}

// DecodeCheckIn 解析任一形态的打卡 JSON，混用两种字段视为错误
func DecodeCheckIn(data []byte) (CheckInData, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return CheckInData{}, fmt.Errorf("解析打卡数据失败: %w", err)
	}

	_, hasGoal := keys["goalAchievement"]
	_, hasRating := keys["selfRating"]
	_, hasAchieved := keys["goalAchieved"]
	_, hasSatisfaction := keys["satisfaction"]

	mobile := hasAchieved || hasSatisfaction
	web := hasGoal || hasRating
	switch {
	case mobile && web:
		return CheckInData{}, fmt.Errorf("打卡数据混用了两种形态的字段")
	case mobile:
		var m MobileCheckIn
		if err := json.Unmarshal(data, &m); err != nil {
			return CheckInData{}, fmt.Errorf("解析移动端打卡失败: %w", err)
		}
		return m.ToCheckIn(), nil
	default:
		var c CheckInData
		if err := json.Unmarshal(data, &c); err != nil {
			return CheckInData{}, fmt.Errorf("解析打卡失败: %w", err)
		}
		return c, nil
	}
}

func clampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

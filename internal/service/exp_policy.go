package service

import "github.com/yuqie6/WellMirror/internal/model"

// ExpPolicy 经验计算策略（可替换）
type ExpPolicy interface {
	ExpFromScore(score int) int
	ExpToLevel(level int) int
}

// DefaultExpPolicy 默认经验策略：得分×2，每级所需经验 100×等级
type DefaultExpPolicy struct{}

// ExpFromScore 根据得分计算经验
func (DefaultExpPolicy) ExpFromScore(score int) int {
	return ExperienceFromScore(score)
}

// ExpToLevel 升到下一级所需经验
func (DefaultExpPolicy) ExpToLevel(level int) int {
	return ExperienceToLevel(level)
}

// ExperienceFromScore 得分换算经验（负分按 0 计）
func ExperienceFromScore(score int) int {
	return clampInt(score, 0, maxTotalScore) * 2
}

// ExperienceToLevel 等级 level 升级所需经验
func ExperienceToLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return 100 * level
}

// ApplyExperience 增加经验并处理连续升级，返回升级次数
func ApplyExperience(p *model.UserProfile, exp int, policy ExpPolicy) int {
	if p == nil || exp <= 0 {
		return 0
	}
	if policy == nil {
		policy = DefaultExpPolicy{}
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.ExperienceToNextLevel <= 0 {
		p.ExperienceToNextLevel = policy.ExpToLevel(p.Level)
	}

	p.Experience += exp
	levelUps := 0
	for p.Experience >= p.ExperienceToNextLevel {
		p.Experience -= p.ExperienceToNextLevel
		p.Level++
		p.ExperienceToNextLevel = policy.ExpToLevel(p.Level)
		levelUps++
	}
	return levelUps
}

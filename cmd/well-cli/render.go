package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/schema"
	"github.com/yuqie6/WellMirror/internal/service"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// scoreColor 分数颜色与 ScoreMessage 的四档一致
func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 91:
		return lipgloss.Color("42")
	case score >= 61:
		return lipgloss.Color("39")
	case score >= 31:
		return lipgloss.Color("214")
	default:
		return lipgloss.Color("196")
	}
}

func renderScore(score int) string {
	return lipgloss.NewStyle().Bold(true).Foreground(scoreColor(score)).Render(fmt.Sprintf("%d 分", score))
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func renderUsage(u model.UsageData) []string {
	return []string{
		row("使用时长", fmt.Sprintf("%d 分钟", u.TotalTime)),
		row("深夜使用", fmt.Sprintf("%d 分钟", u.LateNightTime)),
		row("长时段", fmt.Sprintf("%d 次", u.LongSessions)),
		row("短视频占比", fmt.Sprintf("%.0f%%", u.ShortFormRatio*100)),
		row("社交占比", fmt.Sprintf("%.0f%%", u.SNSRatio*100)),
		row("游戏占比", fmt.Sprintf("%.0f%%", u.GameRatio*100)),
	}
}

// renderScoreCard 实时得分卡片
func renderScoreCard(res *service.CurrentScoreResult) string {
	lines := []string{
		titleStyle.Render("📱 " + res.Date + " 实时得分"),
		"",
		renderScore(res.Score) + "  " + res.Message,
		"",
	}
	if !res.HasData {
		lines = append(lines, dimStyle.Render("尚无当日使用数据，可通过 well usage import 导入"))
	} else {
		lines = append(lines, renderUsage(res.Usage)...)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// renderReport 日报卡片
func renderReport(r *schema.DailyReport) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s %s 日报", service.MoodEmoji(r.CheckIn.Mood), r.Date)),
		"",
		renderScore(r.Score) + dimStyle.Render(fmt.Sprintf("  (基础 %d + 连续打卡 %d)", r.BaseScore, r.BonusScore)),
		"",
	}
	for _, cat := range service.Categories {
		lines = append(lines, row(categoryLabel(cat), fmt.Sprintf("%d / 20", r.Breakdown[cat])))
	}
	lines = append(lines, "", "💬 "+r.AIComment)
	if r.Suggestion != "" {
		lines = append(lines, "💡 "+r.Suggestion)
	}
	source := "AI"
	if r.FeedbackSource == schema.FeedbackSourceLocal {
		source = "本地"
	}
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("评语来源: %s · 经验 +%d", source, r.ExperienceGained)))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// renderProfile 成长档案
func renderProfile(p *model.UserProfile) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("🌱 Lv.%d", p.Level)),
		"",
		row("经验", fmt.Sprintf("%d / %d", p.Experience, p.ExperienceToNextLevel)),
		row("累计打卡", fmt.Sprintf("%d 天", p.TotalDays)),
		row("连续打卡", fmt.Sprintf("%d 天", p.CurrentStreak)),
		row("目标时长", fmt.Sprintf("%d 分钟", p.Onboarding.TargetScreenTime)),
		row("就寝时间", p.Onboarding.TargetBedTime),
	}
	if len(p.Onboarding.Patterns) > 0 {
		lines = append(lines, row("想减少", strings.Join(p.Onboarding.Patterns, ", ")))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func categoryLabel(cat string) string {
	switch cat {
	case service.CategoryScreenTime:
		return "使用时长"
	case service.CategoryLateNight:
		return "深夜使用"
	case service.CategoryLongSessions:
		return "长时段"
	case service.CategoryShortForm:
		return "短视频"
	case service.CategoryCheckIn:
		return "打卡"
	default:
		return cat
	}
}

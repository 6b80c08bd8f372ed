package service

import (
	"strings"

	"github.com/yuqie6/WellMirror/internal/model"
)

var moodEmojis = [...]string{"😔", "😐", "🙂", "😊", "😄"}

// Feedback 评语与建议
type Feedback struct {
	Comment    string `json:"comment"`
	Suggestion string `json:"suggestion"`
}

// MoodEmoji 心情 1-5 对应的表情，越界返回中性表情
func MoodEmoji(mood int) string {
	if mood < 1 || mood > len(moodEmojis) {
		return moodEmojis[1]
	}
	return moodEmojis[mood-1]
}

// GenerateLocalFeedback AI 不可用时的本地评语，总是返回非空的评语和建议
func GenerateLocalFeedback(
	score int,
	usage model.UsageData,
	notifications model.NotificationData,
	checkIn model.CheckInData,
	onboarding model.OnboardingData,
) Feedback {
	var b strings.Builder
	b.WriteString(MoodEmoji(checkIn.Mood))
	b.WriteString(" ")

	var suggestion string
	switch {
	case score >= 90:
		b.WriteString("太棒了！今天把手机使用控制得非常好。")
		if usage.LateNightTime == 0 {
			b.WriteString("深夜也没有使用，")
		}
		b.WriteString("整体是很均衡的一天。")
		suggestion = "明天继续保持这个节奏，睡前一小时把手机放远一点。"
	case score >= 60:
		b.WriteString("还不错的一天。")
		if usage.LongSessions > 3 {
			b.WriteString("不过连续使用的时间有点长。")
		}
		if usage.ShortFormRatio > 0.4 {
			b.WriteString("短视频占用了不少时间。")
		}
		b.WriteString("再多一点有意识的使用会更好。")
		suggestion = "明天试着每 20 分钟设一个提醒，提醒响了就休息 5 分钟。"
	case score >= 30:
		b.WriteString("今天好像有点辛苦。")
		if usage.LateNightTime > 30 {
			b.WriteString("深夜使用较多，可能会影响睡眠。")
		}
		if notifications.HasOverload {
			b.WriteString("通知也来得很多。")
		}
		b.WriteString("明天会更好的。")
		suggestion = "睡前 30 分钟把手机放到另一个房间，用纸质书或冥想结束这一天。"
	default:
		b.WriteString("辛苦的一天。")
		if onboarding.TargetScreenTime > 0 && usage.TotalTime > onboarding.TargetScreenTime*2 {
			b.WriteString("使用时长超过了目标的两倍。")
		}
		if usage.LateNightTime > 60 {
			b.WriteString("深夜使用尤其多。")
		}
		b.WriteString("没关系，慢慢改善就好。")
		suggestion = "明天关掉通知，只在需要时查看手机。从小的改变开始最重要。"
	}

	return Feedback{Comment: b.String(), Suggestion: suggestion}
}

// ScoreMessage 首页得分横幅
func ScoreMessage(score int) string {
	switch {
	case score >= 91:
		return "🎉 完美航行！"
	case score >= 61:
		return "🐬 游得很好！"
	case score >= 31:
		return "🌊 继续向前游！"
	default:
		return "🐚 明天会更好"
	}
}

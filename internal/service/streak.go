package service

import (
	"fmt"

	"github.com/yuqie6/WellMirror/internal/repository"
)

// NextStreak 计算新报告日的连续天数
// 与上一报告日恰好相差一个自然日时 +1，否则（含首次）重置为 1。
// 日期均为配置时区下的 YYYY-MM-DD。
func NextStreak(prevStreak int, prevDate, newDate string) (int, error) {
	if prevDate == "" {
		return 1, nil
	}
	days, err := repository.CalendarDaysBetween(prevDate, newDate)
	if err != nil {
		return 0, fmt.Errorf("计算连续天数失败: %w", err)
	}
	if days == 1 {
		return max(prevStreak, 0) + 1, nil
	}
	return 1, nil
}

package service

import (
	"math"
	"time"

	"github.com/yuqie6/WellMirror/internal/model"
)

// LongSessionThreshold 长时段阈值
const LongSessionThreshold = 20 * time.Minute

// LateNightCutoffMinutes 深夜时段在次日清晨结束的时刻（05:00）
const LateNightCutoffMinutes = 5 * 60

// SecondsToMinutesFloor 将秒数转换为分钟数（向下取整）
func SecondsToMinutesFloor(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return seconds / 60
}

// FilterUsageRows 过滤空包名与系统包
func FilterUsageRows(rows []model.UsageRow) []model.UsageRow {
	out := make([]model.UsageRow, 0, len(rows))
	for _, r := range rows {
		if r.PackageName == "" || r.UsageTime <= 0 {
			continue
		}
		if IsSystemPackage(r.PackageName) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AggregateUsage 将原生桥导出的行聚合为当日使用指标
// day 为当日零点（配置时区），用于定位就寝时间。
func AggregateUsage(rows []model.UsageRow, onboarding model.OnboardingData, day time.Time) model.UsageData {
	rows = FilterUsageRows(rows)

	windows := lateNightWindows(onboarding.BedTimeMinutes(), day)

	var (
		totalSec     float64
		lateNightSec float64
		longSessions int
		categorySec  = map[string]float64{}
	)
	for _, r := range rows {
		totalSec += r.UsageTime
		categorySec[ClassifyApp(r.PackageName)] += r.UsageTime

		if r.UsageTime >= LongSessionThreshold.Seconds() {
			longSessions++
		}
		lateNightSec += lateNightSeconds(r, windows)
	}

	usage := model.UsageData{
		TotalTime:     SecondsToMinutesFloor(int(totalSec)),
		LateNightTime: SecondsToMinutesFloor(int(lateNightSec)),
		LongSessions:  longSessions,
	}
	if totalSec > 0 {
		usage.ShortFormRatio = roundRatio(categorySec[AppCategoryShortForm] / totalSec)
		usage.SNSRatio = roundRatio(categorySec[AppCategorySNS] / totalSec)
		usage.GameRatio = roundRatio(categorySec[AppCategoryGame] / totalSec)
	}
	return usage
}

type timeWindow struct {
	start, end time.Time
}

// lateNightWindows 当日内属于深夜的时段
// 就寝时间在清晨截止之前（如 00:30）时只有 [bedtime, 05:00)；
// 否则为 [00:00, 05:00) 与 [bedtime, 24:00)。
func lateNightWindows(bedMinutes int, day time.Time) []timeWindow {
	if bedMinutes < 0 {
		return nil
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	at := func(minutes int) time.Time {
		return midnight.Add(time.Duration(minutes) * time.Minute)
	}
	cutoff := at(LateNightCutoffMinutes)
	if bedMinutes < LateNightCutoffMinutes {
		return []timeWindow{{start: at(bedMinutes), end: cutoff}}
	}
	return []timeWindow{
		{start: midnight, end: cutoff},
		{start: at(bedMinutes), end: midnight.AddDate(0, 0, 1)},
	}
}

// lateNightSeconds 活跃区间 [first,last] 与深夜时段重叠的部分，不超过该行的使用时长
func lateNightSeconds(r model.UsageRow, windows []timeWindow) float64 {
	if r.LastTimeStamp <= 0 || len(windows) == 0 {
		return 0
	}
	first := time.UnixMilli(int64(r.FirstTimeStamp))
	last := time.UnixMilli(int64(r.LastTimeStamp))

	var overlap float64
	for _, w := range windows {
		start, end := first, last
		if start.Before(w.start) {
			start = w.start
		}
		if end.After(w.end) {
			end = w.end
		}
		if end.After(start) {
			overlap += end.Sub(start).Seconds()
		}
	}
	return math.Min(overlap, r.UsageTime)
}

func roundRatio(v float64) float64 {
	return math.Round(v*1000) / 1000
}

package repository

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DayRange 将 YYYY-MM-DD 解析为 loc 下当日区间的毫秒时间戳 [start, end]（闭区间）。
// 以下一自然日零点为界，夏令时切换日也是完整的一天。
func DayRange(date string, loc *time.Location) (startMs int64, endMs int64, err error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return 0, 0, fmt.Errorf("解析日期失败: %w", err)
	}
	next := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
	return t.UnixMilli(), next.UnixMilli() - 1, nil
}

// CalendarDaysBetween 返回 to 与 from 两个日期相差的自然日数（to - from）。
// 只比较年月日，不受夏令时与闰秒影响。
func CalendarDaysBetween(from, to string) (int, error) {
	a, err := time.Parse(dateLayout, from)
	if err != nil {
		return 0, fmt.Errorf("解析日期 %q 失败: %w", from, err)
	}
	b, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0, fmt.Errorf("解析日期 %q 失败: %w", to, err)
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// FormatDate 将时间格式化为 loc 下的 YYYY-MM-DD
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateLayout)
}

// ValidDate 校验 YYYY-MM-DD
func ValidDate(date string) bool {
	_, err := time.Parse(dateLayout, date)
	return err == nil
}

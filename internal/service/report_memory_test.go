package service

import (
	"context"
	"math"
	"testing"

	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/schema"
)

func TestReportVectorNormalized(t *testing.T) {
	t.Parallel()

	v := ReportVector(map[string]int{CategoryScreenTime: 20, CategoryCheckIn: 5}, model.UsageData{SNSRatio: 0.3})
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("|v|^2=%v, want 1", sum)
	}
}

func TestReportMemorySimilar(t *testing.T) {
	m, err := NewReportMemory(nil)
	if err != nil {
		t.Fatalf("NewReportMemory: %v", err)
	}
	ctx := context.Background()
	onboarding := model.OnboardingData{TargetScreenTime: 180, TargetBedTime: "23:00"}

	if days, err := m.Similar(ctx, model.UsageData{}, model.CheckInData{GoalAchievement: 3}, onboarding, 3); err != nil || days != nil {
		t.Fatalf("empty memory days=%v err=%v", days, err)
	}

	good := CalculateDailyScore(model.UsageData{TotalTime: 100}, model.NotificationData{}, model.CheckInData{GoalAchievement: 5}, onboarding, 0)
	badUsage := model.UsageData{TotalTime: 900, LateNightTime: 90, LongSessions: 5, ShortFormRatio: 0.8}
	bad := CalculateDailyScore(badUsage, model.NotificationData{}, model.CheckInData{GoalAchievement: 1}, onboarding, 0)

	reports := []schema.DailyReport{
		{Date: "2025-03-01", Score: good.TotalScore, Breakdown: good.Breakdown, Usage: model.UsageData{TotalTime: 100}},
		{Date: "2025-03-02", Score: bad.TotalScore, Breakdown: bad.Breakdown, Usage: badUsage, AIComment: "深夜刷了很久短视频"},
	}
	n, err := m.Rebuild(ctx, reports)
	if err != nil || n != 2 {
		t.Fatalf("Rebuild n=%d err=%v", n, err)
	}
	if n, _ := m.Rebuild(ctx, reports); n != 0 {
		t.Fatalf("Rebuild on non-empty memory should be a no-op, got %d", n)
	}

	days, err := m.Similar(ctx, badUsage, model.CheckInData{GoalAchievement: 1}, onboarding, 10)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("topK should clamp to 2, got %d", len(days))
	}
	if days[0].Date != "2025-03-02" || days[0].Score != bad.TotalScore {
		t.Fatalf("nearest day=%+v, want 2025-03-02", days[0])
	}
	if days[0].Comment != "深夜刷了很久短视频" {
		t.Fatalf("nearest day comment=%q", days[0].Comment)
	}

	if err := m.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if m.Count() != 0 {
		t.Fatalf("count after reset=%d", m.Count())
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"", 5, ""},
		{"短评", 5, "短评"},
		{"今天整体节奏很好", 4, "今天整体..."},
		{"abc", 0, ""},
	}
	for _, c := range cases {
		if got := truncateRunes(c.in, c.max); got != c.want {
			t.Errorf("truncateRunes(%q, %d)=%q, want %q", c.in, c.max, got, c.want)
		}
	}
}

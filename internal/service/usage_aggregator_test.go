package service

import (
	"testing"
	"time"

	"github.com/yuqie6/WellMirror/internal/model"
)

func TestSecondsToMinutesFloor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		seconds int
		want    int
	}{
		{seconds: -1, want: 0},
		{seconds: 0, want: 0},
		{seconds: 59, want: 0},
		{seconds: 60, want: 1},
		{seconds: 121, want: 2},
	}

	for _, c := range cases {
		if got := SecondsToMinutesFloor(c.seconds); got != c.want {
			t.Fatalf("SecondsToMinutesFloor(%d)=%d, want %d", c.seconds, got, c.want)
		}
	}
}

func TestClassifyApp(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"com.zhiliaoapp.musically":   AppCategoryShortForm,
		"COM.Google.Android.YouTube": AppCategoryShortForm,
		"com.instagram.android":      AppCategorySNS,
		"com.kakao.talk":             AppCategorySNS,
		"com.supercell.clashroyale":  AppCategoryGame,
		"com.supercell":              AppCategoryOther,
		"com.android.chrome":         AppCategoryOther,
	}
	for pkg, want := range cases {
		if got := ClassifyApp(pkg); got != want {
			t.Errorf("ClassifyApp(%q)=%q, want %q", pkg, got, want)
		}
	}
}

func TestIsSystemPackage(t *testing.T) {
	t.Parallel()

	system := []string{"com.android.systemui", "com.sec.android.app.launcher", "com.samsung.android.honeyboard.keyboard", "com.android.bluetooth", "com.android.providers.media"}
	for _, p := range system {
		if !IsSystemPackage(p) {
			t.Errorf("%s should be filtered", p)
		}
	}
	for _, p := range []string{"com.android.settings", "com.android.vending", "com.kakao.talk"} {
		if IsSystemPackage(p) {
			t.Errorf("%s should be kept", p)
		}
	}
}

func TestAggregateUsage(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("KST", 9*3600)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, loc)
	at := func(h, m int) float64 {
		return float64(day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute).UnixMilli())
	}
	onboarding := model.OnboardingData{TargetScreenTime: 120, TargetBedTime: "23:00"}

	rows := []model.UsageRow{
		// 短视频 30 分钟，23:00 之后活跃 20 分钟
		{PackageName: "com.zhiliaoapp.musically", UsageTime: 1800, FirstTimeStamp: at(22, 0), LastTimeStamp: at(23, 20)},
		// 社交 10 分钟，白天
		{PackageName: "com.kakao.talk", UsageTime: 600, FirstTimeStamp: at(9, 0), LastTimeStamp: at(12, 0)},
		// 游戏 20 分钟，23:30-23:59 活跃区间 29 分钟，但只用了 20 分钟
		{PackageName: "com.supercell.clashofclans", UsageTime: 1200, FirstTimeStamp: at(23, 30), LastTimeStamp: at(23, 59)},
		// 系统包过滤
		{PackageName: "com.android.systemui", UsageTime: 9999, FirstTimeStamp: at(0, 0), LastTimeStamp: at(23, 59)},
		// 设置保留
		{PackageName: "com.android.settings", UsageTime: 600, FirstTimeStamp: at(10, 0), LastTimeStamp: at(10, 10)},
		{PackageName: "", UsageTime: 100},
	}

	got := AggregateUsage(rows, onboarding, day)
	if got.TotalTime != 70 {
		t.Fatalf("TotalTime=%d, want 70", got.TotalTime)
	}
	if got.LateNightTime != 40 {
		t.Fatalf("LateNightTime=%d, want 40", got.LateNightTime)
	}
	if got.LongSessions != 2 {
		t.Fatalf("LongSessions=%d, want 2", got.LongSessions)
	}
	if got.ShortFormRatio != 0.429 || got.SNSRatio != 0.143 || got.GameRatio != 0.286 {
		t.Fatalf("ratios=%v/%v/%v", got.ShortFormRatio, got.SNSRatio, got.GameRatio)
	}
}

func TestAggregateUsage_LateNightWindow(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("KST", 9*3600)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, loc)
	at := func(h, m int) float64 {
		return float64(day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute).UnixMilli())
	}

	cases := []struct {
		name     string
		bedtime  string
		from, to [2]int
		seconds  float64
		want     int
	}{
		{"after midnight bedtime, afternoon", "00:30", [2]int{14, 0}, [2]int{15, 0}, 3600, 0},
		{"after midnight bedtime, past bedtime", "00:30", [2]int{0, 0}, [2]int{1, 0}, 3600, 30},
		{"after midnight bedtime, after cutoff", "00:30", [2]int{5, 0}, [2]int{6, 0}, 3600, 0},
		{"evening bedtime, early morning", "23:00", [2]int{1, 0}, [2]int{2, 0}, 3600, 60},
		{"evening bedtime, crosses cutoff", "23:00", [2]int{4, 30}, [2]int{6, 0}, 3600, 30},
		{"evening bedtime, afternoon", "23:00", [2]int{14, 0}, [2]int{15, 0}, 3600, 0},
		{"evening bedtime, before bed", "23:00", [2]int{22, 30}, [2]int{23, 30}, 3600, 30},
	}
	for _, c := range cases {
		rows := []model.UsageRow{{
			PackageName:    "com.kakao.talk",
			UsageTime:      c.seconds,
			FirstTimeStamp: at(c.from[0], c.from[1]),
			LastTimeStamp:  at(c.to[0], c.to[1]),
		}}
		onboarding := model.OnboardingData{TargetScreenTime: 120, TargetBedTime: c.bedtime}
		got := AggregateUsage(rows, onboarding, day)
		if got.LateNightTime != c.want {
			t.Errorf("%s: LateNightTime=%d, want %d", c.name, got.LateNightTime, c.want)
		}
	}
}

func TestAggregateUsage_Empty(t *testing.T) {
	t.Parallel()

	got := AggregateUsage(nil, model.OnboardingData{TargetBedTime: "bad"}, time.Now())
	if got != (model.UsageData{}) {
		t.Fatalf("empty rows should aggregate to zero, got %+v", got)
	}
}

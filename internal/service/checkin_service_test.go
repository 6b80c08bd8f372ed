package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuqie6/WellMirror/internal/ai"
	"github.com/yuqie6/WellMirror/internal/eventbus"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/repository"
	"github.com/yuqie6/WellMirror/internal/schema"
	"github.com/yuqie6/WellMirror/internal/testutil"
)

// ===== Mock Implementations =====

type fakeCommenter struct {
	err  error
	reqs []*ai.CommentRequest
}

func (f *fakeCommenter) GenerateComment(ctx context.Context, req *ai.CommentRequest) (*ai.CommentResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &ai.CommentResult{Comment: "AI 评语", Suggestion: "AI 建议"}, nil
}

type fakePublisher struct {
	events []eventbus.Event
}

func (f *fakePublisher) Publish(evt eventbus.Event) {
	f.events = append(f.events, evt)
}

type checkInFixture struct {
	svc       *CheckInService
	profiles  *ProfileService
	usage     *repository.UsageRepository
	commenter *fakeCommenter
	events    *fakePublisher
	memory    *ReportMemory
}

func newCheckInFixture(t *testing.T, commenterErr error) *checkInFixture {
	t.Helper()

	db := testutil.OpenTestDB(t)
	profileRepo := repository.NewProfileRepository(db)
	reportRepo := repository.NewReportRepository(db)
	usageRepo := repository.NewUsageRepository(db)

	memory, err := NewReportMemory(nil)
	if err != nil {
		t.Fatalf("NewReportMemory: %v", err)
	}
	commenter := &fakeCommenter{err: commenterErr}
	events := &fakePublisher{}

	svc := NewCheckInService(profileRepo, reportRepo, usageRepo, commenter, memory, events, &CheckInConfig{
		UserID:   "local",
		Location: time.UTC,
	})
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC) }

	return &checkInFixture{
		svc:       svc,
		profiles:  NewProfileService(profileRepo, reportRepo, usageRepo, memory),
		usage:     usageRepo,
		commenter: commenter,
		events:    events,
		memory:    memory,
	}
}

func (f *checkInFixture) onboard(t *testing.T) {
	t.Helper()
	_, err := f.profiles.CompleteOnboarding(context.Background(), model.OnboardingData{TargetScreenTime: 180, TargetBedTime: "23:00"})
	if err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}
}

func TestCheckInComplete_NotOnboarded(t *testing.T) {
	f := newCheckInFixture(t, nil)

	_, err := f.svc.Complete(context.Background(), CompleteCheckInRequest{CheckIn: model.CheckInData{Mood: 3, GoalAchievement: 3, SelfRating: 3}})
	if !errors.Is(err, ErrNotOnboarded) {
		t.Fatalf("err=%v, want ErrNotOnboarded", err)
	}
}

func TestCheckInComplete_AIComment(t *testing.T) {
	f := newCheckInFixture(t, nil)
	f.onboard(t)
	ctx := context.Background()

	if err := f.usage.UpsertSnapshot(ctx, &schema.UsageSnapshot{Date: "2025-03-01", Usage: model.UsageData{TotalTime: 150}}); err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	report, err := f.svc.Complete(ctx, CompleteCheckInRequest{CheckIn: model.CheckInData{Mood: 4, GoalAchievement: 5, SelfRating: 4}})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if report.Date != "2025-03-01" || report.Score != 100 || report.BonusScore != 0 {
		t.Fatalf("report=%+v", report)
	}
	if report.FeedbackSource != schema.FeedbackSourceAI || report.AIComment != "AI 评语" {
		t.Fatalf("feedback=%s %q", report.FeedbackSource, report.AIComment)
	}
	if report.ExperienceGained != 200 || report.UID == "" {
		t.Fatalf("exp=%d uid=%q", report.ExperienceGained, report.UID)
	}

	req := f.commenter.reqs[0]
	if req.TotalScore != 100 || !req.CheckIn.GoalAchieved || req.UserID != "local" {
		t.Fatalf("comment request=%+v", req)
	}

	p, err := f.profiles.Get(ctx)
	if err != nil {
		t.Fatalf("profile Get: %v", err)
	}
	// 200 经验：1→2 级扣 100，剩 100 < 200
	if p.Level != 2 || p.Experience != 100 || p.ExperienceToNextLevel != 200 || p.TotalDays != 1 || p.CurrentStreak != 1 {
		t.Fatalf("profile=%+v", p)
	}

	if len(f.events.events) != 1 || f.events.events[0].Type != EventReportCreated {
		t.Fatalf("events=%v", f.events.events)
	}
	if f.memory.Count() != 1 {
		t.Fatalf("memory count=%d, want 1", f.memory.Count())
	}
}

func TestCheckInComplete_FallbackAndStreak(t *testing.T) {
	f := newCheckInFixture(t, errors.New("dial tcp: connection refused"))
	f.onboard(t)
	ctx := context.Background()
	checkIn := model.CheckInData{Mood: 2, GoalAchievement: 1, SelfRating: 2}

	r1, err := f.svc.Complete(ctx, CompleteCheckInRequest{Date: "2025-03-01", CheckIn: checkIn})
	if err != nil {
		t.Fatalf("day1: %v", err)
	}
	if r1.FeedbackSource != schema.FeedbackSourceLocal || r1.AIComment == "" || r1.Suggestion == "" {
		t.Fatalf("fallback feedback missing: %+v", r1)
	}
	if r1.BonusScore != 0 {
		t.Fatalf("day1 bonus=%d, want 0", r1.BonusScore)
	}

	r2, err := f.svc.Complete(ctx, CompleteCheckInRequest{Date: "2025-03-02", CheckIn: checkIn})
	if err != nil {
		t.Fatalf("day2: %v", err)
	}
	// 加分使用打卡前的连续天数 1
	if r2.BonusScore != 2 {
		t.Fatalf("day2 bonus=%d, want 2", r2.BonusScore)
	}
	p, _ := f.profiles.Get(ctx)
	if p.CurrentStreak != 2 || p.TotalDays != 2 {
		t.Fatalf("after day2 profile=%+v", p)
	}

	if _, err := f.svc.Complete(ctx, CompleteCheckInRequest{Date: "2025-03-04", CheckIn: checkIn}); err != nil {
		t.Fatalf("day4: %v", err)
	}
	p, _ = f.profiles.Get(ctx)
	if p.CurrentStreak != 1 || p.TotalDays != 3 {
		t.Fatalf("gap should reset streak, profile=%+v", p)
	}

	// 第二次请求时已有历史，评语请求附带相似日
	if len(f.commenter.reqs) != 3 || len(f.commenter.reqs[2].SimilarDays) != 2 {
		t.Fatalf("similar days not attached: %d requests", len(f.commenter.reqs))
	}
}

func TestCheckInComplete_DuplicateDate(t *testing.T) {
	f := newCheckInFixture(t, nil)
	f.onboard(t)
	ctx := context.Background()
	req := CompleteCheckInRequest{Date: "2025-03-01", CheckIn: model.CheckInData{Mood: 3, GoalAchievement: 3, SelfRating: 3}}

	if _, err := f.svc.Complete(ctx, req); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := f.svc.Complete(ctx, req); !errors.Is(err, ErrReportExists) {
		t.Fatalf("err=%v, want ErrReportExists", err)
	}
}

func TestCheckInComplete_EarlierDateKeepsStreak(t *testing.T) {
	f := newCheckInFixture(t, nil)
	f.onboard(t)
	ctx := context.Background()
	checkIn := model.CheckInData{Mood: 4, GoalAchievement: 4, SelfRating: 4}

	for _, d := range []string{"2025-02-26", "2025-02-27", "2025-02-28"} {
		if _, err := f.svc.Complete(ctx, CompleteCheckInRequest{Date: d, CheckIn: checkIn}); err != nil {
			t.Fatalf("%s: %v", d, err)
		}
	}

	_, err := f.svc.Complete(ctx, CompleteCheckInRequest{Date: "2025-02-20", CheckIn: checkIn})
	if !errors.Is(err, ErrBackfill) {
		t.Fatalf("err=%v, want ErrBackfill", err)
	}
	old, _ := f.svc.GetReport(ctx, "2025-02-20")
	if old != nil {
		t.Fatalf("rejected check-in should not be stored")
	}
	p, _ := f.profiles.Get(ctx)
	if p.CurrentStreak != 3 || p.TotalDays != 3 {
		t.Fatalf("profile changed by rejected check-in: %+v", p)
	}

	r, err := f.svc.Complete(ctx, CompleteCheckInRequest{Date: "2025-03-01", CheckIn: checkIn})
	if err != nil {
		t.Fatalf("03-01: %v", err)
	}
	if r.BonusScore != 6 {
		t.Fatalf("bonus=%d, want 6", r.BonusScore)
	}
	p, _ = f.profiles.Get(ctx)
	if p.CurrentStreak != 4 {
		t.Fatalf("streak=%d, want 4", p.CurrentStreak)
	}
}

func TestCheckInComplete_InvalidInput(t *testing.T) {
	f := newCheckInFixture(t, nil)
	f.onboard(t)
	ctx := context.Background()

	if _, err := f.svc.Complete(ctx, CompleteCheckInRequest{CheckIn: model.CheckInData{Mood: 0, GoalAchievement: 3, SelfRating: 3}}); err == nil {
		t.Fatalf("invalid mood accepted")
	}
	if _, err := f.svc.Complete(ctx, CompleteCheckInRequest{Date: "03/01", CheckIn: model.CheckInData{Mood: 3, GoalAchievement: 3, SelfRating: 3}}); err == nil {
		t.Fatalf("invalid date accepted")
	}
}

func TestProfileService_OnboardingAndReset(t *testing.T) {
	f := newCheckInFixture(t, nil)
	ctx := context.Background()

	if _, err := f.profiles.CompleteOnboarding(ctx, model.OnboardingData{TargetScreenTime: 0, TargetBedTime: "23:00"}); err == nil {
		t.Fatalf("invalid onboarding accepted")
	}
	f.onboard(t)
	if _, err := f.profiles.CompleteOnboarding(ctx, model.OnboardingData{TargetScreenTime: 60, TargetBedTime: "22:00"}); !errors.Is(err, ErrProfileExists) {
		t.Fatalf("err=%v, want ErrProfileExists", err)
	}

	p, err := f.profiles.Get(ctx)
	if err != nil || p.Level != 1 || p.ExperienceToNextLevel != 100 || p.Onboarding.TargetScreenTime != 180 {
		t.Fatalf("initial profile=%+v err=%v", p, err)
	}

	if _, err := f.svc.Complete(ctx, CompleteCheckInRequest{Date: "2025-03-01", CheckIn: model.CheckInData{Mood: 3, GoalAchievement: 3, SelfRating: 3}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := f.profiles.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := f.profiles.Get(ctx); !errors.Is(err, ErrNotOnboarded) {
		t.Fatalf("after reset err=%v, want ErrNotOnboarded", err)
	}
	if reports, _ := f.svc.ListReports(ctx, 0); len(reports) != 0 {
		t.Fatalf("reports left after reset: %d", len(reports))
	}
	if f.memory.Count() != 0 {
		t.Fatalf("memory left after reset: %d", f.memory.Count())
	}
}

func TestProfileService_CurrentScore(t *testing.T) {
	f := newCheckInFixture(t, nil)
	f.onboard(t)
	ctx := context.Background()

	empty, err := f.profiles.CurrentScore(ctx, "2025-03-01")
	if err != nil {
		t.Fatalf("CurrentScore: %v", err)
	}
	if empty.HasData || empty.Score != 100 {
		t.Fatalf("no usage yet: %+v", empty)
	}

	_ = f.usage.UpsertSnapshot(ctx, &schema.UsageSnapshot{Date: "2025-03-01", Usage: model.UsageData{TotalTime: 1000, LateNightTime: 100}})
	got, err := f.profiles.CurrentScore(ctx, "2025-03-01")
	if err != nil {
		t.Fatalf("CurrentScore: %v", err)
	}
	if !got.HasData || got.Score != 50 || got.Message == "" {
		t.Fatalf("current=%+v", got)
	}
}

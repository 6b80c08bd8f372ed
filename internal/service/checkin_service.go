package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yuqie6/WellMirror/internal/ai"
	"github.com/yuqie6/WellMirror/internal/eventbus"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/repository"
	"github.com/yuqie6/WellMirror/internal/schema"
)

// 事件类型
const (
	EventReportCreated = "report.created"
	EventUsageUpdated  = "usage.updated"
)

const defaultSimilarDays = 3

// CheckInService 打卡完成：评分 → 评语 → 经验/等级/连续天数 → 报告
type CheckInService struct {
	profileRepo ProfileRepository
	reportRepo  ReportRepository
	usageRepo   UsageRepository
	commenter   Commenter
	memory      MemoryIndexer
	events      EventPublisher
	expPolicy   ExpPolicy

	userID      string
	loc         *time.Location
	similarDays int
	now         func() time.Time
}

// CheckInConfig 配置
type CheckInConfig struct {
	UserID      string
	Location    *time.Location
	SimilarDays int
}

// NewCheckInService 创建服务；commenter/memory/events 可为 nil
func NewCheckInService(
	profileRepo ProfileRepository,
	reportRepo ReportRepository,
	usageRepo UsageRepository,
	commenter Commenter,
	memory MemoryIndexer,
	events EventPublisher,
	cfg *CheckInConfig,
) *CheckInService {
	if cfg == nil {
		cfg = &CheckInConfig{}
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.SimilarDays <= 0 {
		cfg.SimilarDays = defaultSimilarDays
	}
	return &CheckInService{
		profileRepo: profileRepo,
		reportRepo:  reportRepo,
		usageRepo:   usageRepo,
		commenter:   commenter,
		memory:      memory,
		events:      events,
		expPolicy:   DefaultExpPolicy{},
		userID:      cfg.UserID,
		loc:         cfg.Location,
		similarDays: cfg.SimilarDays,
		now:         time.Now,
	}
}

// CompleteCheckInRequest 打卡请求
type CompleteCheckInRequest struct {
	Date          string                 `json:"date,omitempty"` // 为空取今天
	CheckIn       model.CheckInData      `json:"checkIn"`
	Notifications model.NotificationData `json:"notifications"`
}

// Today 配置时区下的今天
func (s *CheckInService) Today() string {
	return repository.FormatDate(s.now(), s.loc)
}

// Complete 完成当日打卡并生成报告
func (s *CheckInService) Complete(ctx context.Context, req CompleteCheckInRequest) (*schema.DailyReport, error) {
	if err := req.CheckIn.Validate(); err != nil {
		return nil, err
	}
	date := req.Date
	if date == "" {
		date = s.Today()
	}
	if !repository.ValidDate(date) {
		return nil, fmt.Errorf("日期格式应为 YYYY-MM-DD: %q", date)
	}

	rec, err := s.profileRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotOnboarded
	}
	profile := rec.ToModel()

	existing, err := s.reportRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", date, ErrReportExists)
	}
	prev, err := s.reportRepo.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	if prev != nil && date < prev.Date {
		return nil, fmt.Errorf("%s 早于 %s: %w", date, prev.Date, ErrBackfill)
	}

	var usage model.UsageData
	snap, err := s.usageRepo.GetSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		usage = snap.Usage
	}

	// 加分使用打卡前的连续天数
	score := CalculateDailyScore(usage, req.Notifications, req.CheckIn, profile.Onboarding, profile.CurrentStreak)
	feedback, source := s.feedback(ctx, date, score.TotalScore, usage, req, profile)

	exp := s.expPolicy.ExpFromScore(score.TotalScore)
	report := &schema.DailyReport{
		UID:              uuid.NewString(),
		Date:             date,
		Score:            score.TotalScore,
		BaseScore:        score.BaseScore,
		BonusScore:       score.BonusScore,
		Breakdown:        score.Breakdown,
		Usage:            usage,
		Notifications:    req.Notifications,
		CheckIn:          req.CheckIn,
		AIComment:        feedback.Comment,
		Suggestion:       feedback.Suggestion,
		ExperienceGained: exp,
		FeedbackSource:   source,
	}

	prevDate := ""
	if prev != nil {
		prevDate = prev.Date
	}
	streak, err := NextStreak(profile.CurrentStreak, prevDate, date)
	if err != nil {
		return nil, err
	}

	levelUps := ApplyExperience(&profile, exp, s.expPolicy)
	profile.TotalDays++
	profile.CurrentStreak = streak

	if err := s.reportRepo.CreateWithProfile(ctx, report, schema.NewProfileRecord(profile)); err != nil {
		return nil, err
	}
	slog.Info("打卡完成",
		"date", date,
		"score", report.Score,
		"exp", exp,
		"level", profile.Level,
		"level_ups", levelUps,
		"streak", profile.CurrentStreak,
		"feedback", source,
	)

	if s.memory != nil {
		if err := s.memory.IndexReport(ctx, report); err != nil {
			slog.Warn("索引报告到长期记忆失败", "date", date, "error", err)
		}
	}
	if s.events != nil {
		s.events.Publish(eventbus.Event{
			Type: EventReportCreated,
			Data: map[string]any{"date": date, "score": report.Score, "level": profile.Level, "streak": profile.CurrentStreak},
		})
	}
	return report, nil
}

// feedback 请求 AI 评语，失败时退回本地评语
func (s *CheckInService) feedback(
	ctx context.Context,
	date string,
	totalScore int,
	usage model.UsageData,
	req CompleteCheckInRequest,
	profile model.UserProfile,
) (Feedback, string) {
	if s.commenter != nil {
		var similar []ai.SimilarDay
		if s.memory != nil {
			days, err := s.memory.Similar(ctx, usage, req.CheckIn, profile.Onboarding, s.similarDays)
			if err != nil {
				slog.Warn("查询相似历史日失败", "error", err)
			} else {
				similar = days
			}
		}

		res, err := s.commenter.GenerateComment(ctx, &ai.CommentRequest{
			UserID:        s.userID,
			Date:          date,
			TotalScore:    totalScore,
			Usage:         usage,
			Notifications: req.Notifications,
			CheckIn:       req.CheckIn.ToMobile(),
			Profile:       profile,
			SimilarDays:   similar,
		})
		if err == nil {
			return Feedback{Comment: res.Comment, Suggestion: res.Suggestion}, schema.FeedbackSourceAI
		}
		slog.Warn("AI 评语请求失败，使用本地评语", "date", date, "error", err)
	}
	return GenerateLocalFeedback(totalScore, usage, req.Notifications, req.CheckIn, profile.Onboarding), schema.FeedbackSourceLocal
}

// ListReports 报告日志（按日期升序）
func (s *CheckInService) ListReports(ctx context.Context, limit int) ([]schema.DailyReport, error) {
	return s.reportRepo.List(ctx, limit)
}

// GetReport 获取某日报告，不存在返回 nil
func (s *CheckInService) GetReport(ctx context.Context, date string) (*schema.DailyReport, error) {
	return s.reportRepo.GetByDate(ctx, date)
}

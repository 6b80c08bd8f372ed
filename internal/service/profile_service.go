package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/schema"
)

// ProfileService 成长档案与引导
type ProfileService struct {
	profileRepo ProfileRepository
	reportRepo  ReportRepository
	usageRepo   UsageRepository
	memory      MemoryIndexer
}

// NewProfileService 创建服务；memory 可为 nil
func NewProfileService(profileRepo ProfileRepository, reportRepo ReportRepository, usageRepo UsageRepository, memory MemoryIndexer) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		reportRepo:  reportRepo,
		usageRepo:   usageRepo,
		memory:      memory,
	}
}

// CompleteOnboarding 校验引导数据并创建初始档案
func (s *ProfileService) CompleteOnboarding(ctx context.Context, onboarding model.OnboardingData) (*model.UserProfile, error) {
	if err := onboarding.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.profileRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProfileExists
	}

	profile := model.NewUserProfile(onboarding)
	if err := s.profileRepo.Create(ctx, schema.NewProfileRecord(profile)); err != nil {
		return nil, err
	}
	slog.Info("引导完成", "target_screen_time", onboarding.TargetScreenTime, "bed_time", onboarding.TargetBedTime)
	return &profile, nil
}

// Get 获取档案，未引导返回 ErrNotOnboarded
func (s *ProfileService) Get(ctx context.Context) (*model.UserProfile, error) {
	rec, err := s.profileRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotOnboarded
	}
	p := rec.ToModel()
	return &p, nil
}

// CurrentScoreResult 实时得分
type CurrentScoreResult struct {
	Date    string          `json:"date"`
	Score   int             `json:"score"`
	Message string          `json:"message"`
	Usage   model.UsageData `json:"usage"`
	HasData bool            `json:"hasData"`
}

// CurrentScore 基于当日使用快照的实时得分（不含打卡）
func (s *ProfileService) CurrentScore(ctx context.Context, date string) (*CurrentScoreResult, error) {
	profile, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.usageRepo.GetSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	res := &CurrentScoreResult{Date: date}
	if snap != nil {
		res.Usage = snap.Usage
		res.HasData = true
	}
	res.Score = CalculateCurrentScore(res.Usage, profile.Onboarding)
	res.Message = ScoreMessage(res.Score)
	return res, nil
}

// Reset 清空档案、报告、使用数据与长期记忆（仅由用户显式触发）
func (s *ProfileService) Reset(ctx context.Context) error {
	if err := s.reportRepo.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.usageRepo.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.profileRepo.Delete(ctx); err != nil {
		return err
	}
	if s.memory != nil {
		if err := s.memory.Reset(ctx); err != nil {
			return fmt.Errorf("清空长期记忆失败: %w", err)
		}
	}
	slog.Info("已重置所有数据")
	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuqie6/WellMirror/internal/eventbus"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/repository"
	"github.com/yuqie6/WellMirror/internal/schema"
)

// 快照来源
const (
	UsageSourceImport = "import"
	UsageSourceManual = "manual"
)

// UsageService 使用数据导入与当日快照
type UsageService struct {
	profileRepo ProfileRepository
	usageRepo   UsageRepository
	events      EventPublisher
	loc         *time.Location
	now         func() time.Time
}

// NewUsageService 创建服务；events 可为 nil
func NewUsageService(profileRepo ProfileRepository, usageRepo UsageRepository, events EventPublisher, loc *time.Location) *UsageService {
	if loc == nil {
		loc = time.Local
	}
	return &UsageService{
		profileRepo: profileRepo,
		usageRepo:   usageRepo,
		events:      events,
		loc:         loc,
		now:         time.Now,
	}
}

// Import 聚合原生桥导出的行并保存当日快照
func (s *UsageService) Import(ctx context.Context, export *model.UsageExport) (*schema.UsageSnapshot, error) {
	if export == nil {
		return nil, fmt.Errorf("%w: export 不能为空", ErrInvalidUsage)
	}
	date := export.Date
	if date == "" {
		date = repository.FormatDate(s.now(), s.loc)
	}
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: 日期格式应为 YYYY-MM-DD: %q", ErrInvalidUsage, date)
	}

	rec, err := s.profileRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotOnboarded
	}

	rows := FilterUsageRows(export.Rows)
	apps := make([]schema.AppUsage, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, schema.AppUsage{
			PackageName:    r.PackageName,
			AppName:        r.AppName,
			UsageSeconds:   int(r.UsageTime),
			FirstTimeStamp: int64(r.FirstTimeStamp),
			LastTimeStamp:  int64(r.LastTimeStamp),
			Category:       ClassifyApp(r.PackageName),
		})
	}
	if err := s.usageRepo.ReplaceAppUsage(ctx, date, apps); err != nil {
		return nil, err
	}

	usage := AggregateUsage(rows, rec.Onboarding, day)
	snap := &schema.UsageSnapshot{Date: date, Usage: usage, UnlockCount: export.UnlockCount, Source: UsageSourceImport}
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	slog.Info("使用数据已导入", "date", date, "apps", len(apps), "total_minutes", usage.TotalTime, "late_night", usage.LateNightTime)
	return snap, nil
}

// SetUsage 直接写入当日使用指标（手动录入或模拟数据）
func (s *UsageService) SetUsage(ctx context.Context, date string, usage model.UsageData) (*schema.UsageSnapshot, error) {
	if date == "" {
		date = repository.FormatDate(s.now(), s.loc)
	}
	if !repository.ValidDate(date) {
		return nil, fmt.Errorf("%w: 日期格式应为 YYYY-MM-DD: %q", ErrInvalidUsage, date)
	}
	if usage.TotalTime < 0 || usage.LateNightTime < 0 || usage.LongSessions < 0 {
		return nil, fmt.Errorf("%w: 使用指标不能为负数", ErrInvalidUsage)
	}
	for _, r := range []float64{usage.ShortFormRatio, usage.SNSRatio, usage.GameRatio} {
		if r < 0 || r > 1 {
			return nil, fmt.Errorf("%w: 占比必须在 0-1 之间，当前为 %v", ErrInvalidUsage, r)
		}
	}

	snap := &schema.UsageSnapshot{Date: date, Usage: usage, Source: UsageSourceManual}
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// TopApps 当日使用时长排行
func (s *UsageService) TopApps(ctx context.Context, date string, limit int) ([]repository.AppStat, error) {
	return s.usageRepo.GetAppStats(ctx, date, limit)
}

func (s *UsageService) save(ctx context.Context, snap *schema.UsageSnapshot) error {
	if err := s.usageRepo.UpsertSnapshot(ctx, snap); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Publish(eventbus.Event{
			Type: EventUsageUpdated,
			Data: map[string]any{"date": snap.Date, "totalTime": snap.Usage.TotalTime, "source": snap.Source},
		})
	}
	return nil
}

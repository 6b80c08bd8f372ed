package service

import (
	"context"

	"github.com/yuqie6/WellMirror/internal/ai"
	"github.com/yuqie6/WellMirror/internal/collector"
	"github.com/yuqie6/WellMirror/internal/eventbus"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/repository"
	"github.com/yuqie6/WellMirror/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type ProfileRepository interface {
	Get(ctx context.Context) (*schema.ProfileRecord, error)
	Create(ctx context.Context, rec *schema.ProfileRecord) error
	Delete(ctx context.Context) error
}

type ReportRepository interface {
	GetByDate(ctx context.Context, date string) (*schema.DailyReport, error)
	GetLatest(ctx context.Context) (*schema.DailyReport, error)
	List(ctx context.Context, limit int) ([]schema.DailyReport, error)
	CreateWithProfile(ctx context.Context, report *schema.DailyReport, profile *schema.ProfileRecord) error
	DeleteAll(ctx context.Context) error
}

type UsageRepository interface {
	UpsertSnapshot(ctx context.Context, snap *schema.UsageSnapshot) error
	GetSnapshot(ctx context.Context, date string) (*schema.UsageSnapshot, error)
	ReplaceAppUsage(ctx context.Context, date string, rows []schema.AppUsage) error
	GetAppStats(ctx context.Context, date string, limit int) ([]repository.AppStat, error)
	DeleteAll(ctx context.Context) error
}

type KVRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Commenter interface {
	GenerateComment(ctx context.Context, req *ai.CommentRequest) (*ai.CommentResult, error)
}

type MemoryIndexer interface {
	IndexReport(ctx context.Context, report *schema.DailyReport) error
	Similar(ctx context.Context, usage model.UsageData, checkIn model.CheckInData, onboarding model.OnboardingData, topK int) ([]ai.SimilarDay, error)
	Reset(ctx context.Context) error
}

type EventPublisher interface {
	Publish(evt eventbus.Event)
}

// UsageImportSource 使用数据导入事件来源（目录监听）
type UsageImportSource interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan *collector.UsageImport
}

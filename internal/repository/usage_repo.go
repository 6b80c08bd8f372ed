package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/WellMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository 使用数据仓储
type UsageRepository struct {
	db *gorm.DB
}

// NewUsageRepository 创建仓储
func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// UpsertSnapshot 插入或更新某日快照
func (r *UsageRepository) UpsertSnapshot(ctx context.Context, snap *schema.UsageSnapshot) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"usage", "unlock_count", "source", "updated_at"}),
	}).Create(snap).Error
	if err != nil {
		return fmt.Errorf("保存使用快照失败: %w", err)
	}
	return nil
}

// GetSnapshot 获取某日快照，不存在返回 nil
func (r *UsageRepository) GetSnapshot(ctx context.Context, date string) (*schema.UsageSnapshot, error) {
	var snap schema.UsageSnapshot
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询使用快照失败: %w", err)
	}
	return &snap, nil
}

// ReplaceAppUsage 替换某日的应用使用记录（导出文件总是当日全量）
func (r *UsageRepository) ReplaceAppUsage(ctx context.Context, date string, rows []schema.AppUsage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).Delete(&schema.AppUsage{}).Error; err != nil {
			return fmt.Errorf("清理应用使用记录失败: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].Date = date
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("写入应用使用记录失败: %w", err)
		}
		return nil
	})
}

// AppStat 应用使用统计
type AppStat struct {
	PackageName  string
	AppName      string
	Category     string
	UsageSeconds int
}

// GetAppStats 获取某日应用使用排行（按时长降序）
func (r *UsageRepository) GetAppStats(ctx context.Context, date string, limit int) ([]AppStat, error) {
	var stats []AppStat
	q := r.db.WithContext(ctx).
		Model(&schema.AppUsage{}).
		Select("package_name, app_name, category, usage_seconds").
		Where("date = ?", date).
		Order("usage_seconds DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("查询应用统计失败: %w", err)
	}
	return stats, nil
}

// DeleteAll 清空使用数据
func (r *UsageRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&schema.AppUsage{}).Error; err != nil {
			return fmt.Errorf("清空应用使用记录失败: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&schema.UsageSnapshot{}).Error; err != nil {
			return fmt.Errorf("清空使用快照失败: %w", err)
		}
		return nil
	})
}

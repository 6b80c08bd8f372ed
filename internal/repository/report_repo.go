package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/WellMirror/internal/schema"
	"gorm.io/gorm"
)

// ReportRepository 每日报告仓储
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建仓储
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// GetByDate 按日期获取，不存在返回 nil
func (r *ReportRepository) GetByDate(ctx context.Context, date string) (*schema.DailyReport, error) {
	var report schema.DailyReport
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询报告失败: %w", err)
	}
	return &report, nil
}

// GetLatest 获取日期最新的一条报告，不存在返回 nil
func (r *ReportRepository) GetLatest(ctx context.Context) (*schema.DailyReport, error) {
	var report schema.DailyReport
	err := r.db.WithContext(ctx).
		Order("date DESC").
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询最近报告失败: %w", err)
	}
	return &report, nil
}

// List 按日期升序返回报告日志；limit<=0 表示全部
func (r *ReportRepository) List(ctx context.Context, limit int) ([]schema.DailyReport, error) {
	var reports []schema.DailyReport
	q := r.db.WithContext(ctx).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("查询报告列表失败: %w", err)
	}
	// 取最近 N 条后翻转为时间顺序
	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}
	return reports, nil
}

// GetByDateRange 获取日期范围内的报告（升序）
func (r *ReportRepository) GetByDateRange(ctx context.Context, startDate, endDate string) ([]schema.DailyReport, error) {
	var reports []schema.DailyReport
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date ASC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("查询日期范围报告失败: %w", err)
	}
	return reports, nil
}

// CreateWithProfile 在同一事务中追加报告并保存档案
func (r *ReportRepository) CreateWithProfile(ctx context.Context, report *schema.DailyReport, profile *schema.ProfileRecord) error {
	if report == nil || profile == nil {
		return fmt.Errorf("report/profile 不能为空")
	}
	profile.ID = profileRowID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("写入报告失败: %w", err)
		}
		if err := tx.Save(profile).Error; err != nil {
			return fmt.Errorf("更新档案失败: %w", err)
		}
		return nil
	})
}

// DeleteAll 清空报告
func (r *ReportRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&schema.DailyReport{}).Error; err != nil {
		return fmt.Errorf("清空报告失败: %w", err)
	}
	return nil
}

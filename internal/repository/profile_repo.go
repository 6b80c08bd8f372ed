package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/WellMirror/internal/schema"
	"gorm.io/gorm"
)

const profileRowID = 1

// ProfileRepository 成长档案仓储（单行）
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建仓储
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get 获取档案，不存在返回 nil
func (r *ProfileRepository) Get(ctx context.Context) (*schema.ProfileRecord, error) {
	var rec schema.ProfileRecord
	err := r.db.WithContext(ctx).First(&rec, profileRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询档案失败: %w", err)
	}
	return &rec, nil
}

// Create 创建档案（已存在时报错）
func (r *ProfileRepository) Create(ctx context.Context, rec *schema.ProfileRecord) error {
	if rec == nil {
		return fmt.Errorf("rec 不能为空")
	}
	rec.ID = profileRowID
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("创建档案失败: %w", err)
	}
	return nil
}

// Save 覆盖保存档案
func (r *ProfileRepository) Save(ctx context.Context, rec *schema.ProfileRecord) error {
	if rec == nil {
		return fmt.Errorf("rec 不能为空")
	}
	rec.ID = profileRowID
	if err := r.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("保存档案失败: %w", err)
	}
	return nil
}

// Delete 删除档案
func (r *ProfileRepository) Delete(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Delete(&schema.ProfileRecord{}, profileRowID).Error; err != nil {
		return fmt.Errorf("删除档案失败: %w", err)
	}
	return nil
}

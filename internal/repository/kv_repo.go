package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/WellMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRepository 本地键值存储
type KVRepository struct {
	db *gorm.DB
}

// NewKVRepository 创建仓储
func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get 读取键值，不存在时 ok=false
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry schema.KVEntry
	err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("读取 %s 失败: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set 写入键值
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&schema.KVEntry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("写入 %s 失败: %w", key, err)
	}
	return nil
}

// Delete 删除键
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("`key` = ?", key).Delete(&schema.KVEntry{}).Error; err != nil {
		return fmt.Errorf("删除 %s 失败: %w", key, err)
	}
	return nil
}

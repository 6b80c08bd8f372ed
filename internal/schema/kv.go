package schema

import "time"

// KVEntry 本地键值存储（auth.token、auth.onboardingDone 等）
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (KVEntry) TableName() string {
	return "kv_entries"
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/yuqie6/WellMirror/internal/ai"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/schema"
)

const memoryCollection = "daily_reports"

// ReportMemory 历史日报的向量记忆
// 向量由五项分档占比、三类使用占比和一个偏置分量组成，不依赖外部嵌入服务。
type ReportMemory struct {
	mu          sync.Mutex
	db          *chromem.DB
	collection  *chromem.Collection
	storagePath string
}

// ReportMemoryConfig 配置
type ReportMemoryConfig struct {
	StoragePath string // 为空时仅在内存中保存
}

// NewReportMemory 创建长期记忆
func NewReportMemory(cfg *ReportMemoryConfig) (*ReportMemory, error) {
	if cfg == nil {
		cfg = &ReportMemoryConfig{}
	}

	var (
		db  *chromem.DB
		err error
	)
	if cfg.StoragePath == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
			return nil, fmt.Errorf("创建记忆存储目录失败: %w", err)
		}
		db, err = chromem.NewPersistentDB(cfg.StoragePath, false)
		if err != nil {
			return nil, fmt.Errorf("创建向量数据库失败: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(memoryCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 collection 失败: %w", err)
	}

	return &ReportMemory{db: db, collection: collection, storagePath: cfg.StoragePath}, nil
}

// ReportVector 日报的特征向量（已归一化）
func ReportVector(breakdown map[string]int, usage model.UsageData) []float32 {
	v := []float32{
		float32(breakdown[CategoryScreenTime]) / categoryMax,
		float32(breakdown[CategoryLateNight]) / categoryMax,
		float32(breakdown[CategoryLongSessions]) / categoryMax,
		float32(breakdown[CategoryShortForm]) / categoryMax,
		float32(breakdown[CategoryCheckIn]) / categoryMax,
		float32(usage.ShortFormRatio),
		float32(usage.SNSRatio),
		float32(usage.GameRatio),
		1,
	}
	return normalize(v)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// IndexReport 索引一条日报（同一日期覆盖）
func (m *ReportMemory) IndexReport(ctx context.Context, report *schema.DailyReport) error {
	if report == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := chromem.Document{
		ID:        "report_" + report.Date,
		Content:   fmt.Sprintf("日期: %s\n得分: %d\n评语: %s", report.Date, report.Score, report.AIComment),
		Embedding: ReportVector(report.Breakdown, report.Usage),
		Metadata: map[string]string{
			"date":    report.Date,
			"score":   strconv.Itoa(report.Score),
			"comment": truncateRunes(report.AIComment, similarCommentRunes),
		},
	}
	if err := m.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("添加文档失败: %w", err)
	}
	slog.Debug("索引日报", "date", report.Date)
	return nil
}

// Similar 查询与当前情况最相似的历史日；topK 超过已有数量时按实际数量返回
func (m *ReportMemory) Similar(ctx context.Context, usage model.UsageData, checkIn model.CheckInData, onboarding model.OnboardingData, topK int) ([]ai.SimilarDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := m.collection.Count()
	if count == 0 || topK <= 0 {
		return nil, nil
	}
	topK = min(topK, count)

	score := CalculateDailyScore(usage, model.NotificationData{}, checkIn, onboarding, 0)
	results, err := m.collection.QueryEmbedding(ctx, ReportVector(score.Breakdown, usage), topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("向量搜索失败: %w", err)
	}

	out := make([]ai.SimilarDay, 0, len(results))
	for _, r := range results {
		s, _ := strconv.Atoi(r.Metadata["score"])
		out = append(out, ai.SimilarDay{
			Date:       r.Metadata["date"],
			Score:      s,
			Similarity: r.Similarity,
			Comment:    r.Metadata["comment"],
		})
	}
	return out, nil
}

// Count 已索引的日报数
func (m *ReportMemory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collection.Count()
}

// Rebuild 记忆为空时由报告表重建
func (m *ReportMemory) Rebuild(ctx context.Context, reports []schema.DailyReport) (int, error) {
	if m.Count() > 0 {
		return 0, nil
	}
	n := 0
	for i := range reports {
		if err := m.IndexReport(ctx, &reports[i]); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		slog.Info("长期记忆已重建", "reports", n)
	}
	return n, nil
}

// Reset 清空记忆
func (m *ReportMemory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.db.DeleteCollection(memoryCollection); err != nil {
		return fmt.Errorf("删除 collection 失败: %w", err)
	}
	collection, err := m.db.GetOrCreateCollection(memoryCollection, nil, nil)
	if err != nil {
		return fmt.Errorf("创建 collection 失败: %w", err)
	}
	m.collection = collection
	return nil
}

// GetStoragePath 获取存储路径
func (m *ReportMemory) GetStoragePath() string {
	if m.storagePath == "" {
		return ""
	}
	absPath, _ := filepath.Abs(m.storagePath)
	return absPath
}

// 相似日附带的评语摘要长度（rune）
const similarCommentRunes = 60

// truncateRunes 按 rune 截断，超出时追加省略号
func truncateRunes(s string, max int) string {
	if max <= 0 || s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

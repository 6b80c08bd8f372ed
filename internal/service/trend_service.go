package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yuqie6/WellMirror/internal/repository"
	"github.com/yuqie6/WellMirror/internal/schema"
)

// TrendReportSource 趋势所需的报告查询
type TrendReportSource interface {
	GetByDateRange(ctx context.Context, startDate, endDate string) ([]schema.DailyReport, error)
}

// TrendService 趋势分析服务
type TrendService struct {
	reportRepo TrendReportSource
	loc        *time.Location
	now        func() time.Time
}

// NewTrendService 创建趋势服务
func NewTrendService(reportRepo TrendReportSource, loc *time.Location) *TrendService {
	if loc == nil {
		loc = time.Local
	}
	return &TrendService{
		reportRepo: reportRepo,
		loc:        loc,
		now:        time.Now,
	}
}

// TrendPeriod 趋势周期
type TrendPeriod string

const (
	TrendPeriod7Days  TrendPeriod = "7d"
	TrendPeriod30Days TrendPeriod = "30d"
)

// ParseTrendPeriod 解析周期，空值取 7d
func ParseTrendPeriod(s string) (TrendPeriod, error) {
	switch TrendPeriod(s) {
	case "", TrendPeriod7Days:
		return TrendPeriod7Days, nil
	case TrendPeriod30Days:
		return TrendPeriod30Days, nil
	default:
		return "", fmt.Errorf("%w: %q（可选 7d | 30d）", ErrInvalidPeriod, s)
	}
}

// 分项趋势状态
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// 前后半段均分差超过该值才视为变化
const trendDelta = 2.0

// weakCategoryAvg 分项均分低于该值时给出提示
const weakCategoryAvg = 10.0

// CategoryTrend 单个评分类别的趋势
type CategoryTrend struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"` // 0-20
	Status   string  `json:"status"`  // improving, stable, declining
}

// DailyPoint 单日得分
type DailyPoint struct {
	Date      string `json:"date"`
	Score     int    `json:"score"`
	TotalTime int    `json:"totalTime"`
}

// TrendReport 趋势报告
type TrendReport struct {
	Period        TrendPeriod     `json:"period"`
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	CheckInDays   int             `json:"checkInDays"`
	AvgScore      float64         `json:"avgScore"`
	AvgScreenTime float64         `json:"avgScreenTime"` // 分钟
	BestDay       *DailyPoint     `json:"bestDay,omitempty"`
	WorstDay      *DailyPoint     `json:"worstDay,omitempty"`
	Days          []DailyPoint    `json:"days"`
	Categories    []CategoryTrend `json:"categories"`
	Bottlenecks   []string        `json:"bottlenecks"`
}

// GetTrendReport 获取截至今天（含）的趋势报告
func (s *TrendService) GetTrendReport(ctx context.Context, period TrendPeriod) (*TrendReport, error) {
	days := 7
	if period == TrendPeriod30Days {
		days = 30
	}

	now := s.now().In(s.loc)
	endDate := repository.FormatDate(now, s.loc)
	startDate := repository.FormatDate(now.AddDate(0, 0, -(days - 1)), s.loc)

	reports, err := s.reportRepo.GetByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	out := &TrendReport{
		Period:    period,
		StartDate: startDate,
		EndDate:   endDate,
		Days:      make([]DailyPoint, 0, len(reports)),
	}
	out.CheckInDays = len(reports)

	var totalScore, totalTime int
	for _, r := range reports {
		p := DailyPoint{Date: r.Date, Score: r.Score, TotalTime: r.Usage.TotalTime}
		out.Days = append(out.Days, p)
		totalScore += r.Score
		totalTime += r.Usage.TotalTime

		if out.BestDay == nil || p.Score > out.BestDay.Score {
			best := p
			out.BestDay = &best
		}
		if out.WorstDay == nil || p.Score < out.WorstDay.Score {
			worst := p
			out.WorstDay = &worst
		}
	}
	if n := len(reports); n > 0 {
		out.AvgScore = float64(totalScore) / float64(n)
		out.AvgScreenTime = float64(totalTime) / float64(n)
	}

	out.Categories = categoryTrends(reports)
	out.Bottlenecks = detectBottlenecks(out)
	return out, nil
}

// categoryTrends 各类别均分；按日期升序切成前后两半比较
func categoryTrends(reports []schema.DailyReport) []CategoryTrend {
	trends := make([]CategoryTrend, 0, len(Categories))
	half := len(reports) / 2
	for _, cat := range Categories {
		t := CategoryTrend{Category: cat, Status: TrendStable}
		if len(reports) == 0 {
			trends = append(trends, t)
			continue
		}
		t.Average = avgCategory(reports, cat)
		if half > 0 {
			delta := avgCategory(reports[len(reports)-half:], cat) - avgCategory(reports[:half], cat)
			switch {
			case delta >= trendDelta:
				t.Status = TrendImproving
			case delta <= -trendDelta:
				t.Status = TrendDeclining
			}
		}
		trends = append(trends, t)
	}
	return trends
}

func avgCategory(reports []schema.DailyReport, cat string) float64 {
	if len(reports) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reports {
		sum += r.Breakdown[cat]
	}
	return float64(sum) / float64(len(reports))
}

// detectBottlenecks 给出需要关注的类别
func detectBottlenecks(report *TrendReport) []string {
	bottlenecks := []string{}

	if report.CheckInDays == 0 {
		return append(bottlenecks, "这段时间还没有打卡记录，从今天开始吧")
	}

	for _, t := range report.Categories {
		if t.Status == TrendDeclining {
			bottlenecks = append(bottlenecks, fmt.Sprintf("%s 得分正在下滑", t.Category))
			continue
		}
		if t.Average < weakCategoryAvg {
			bottlenecks = append(bottlenecks, fmt.Sprintf("%s 平均仅 %.1f 分，值得重点调整", t.Category, t.Average))
		}
	}
	return bottlenecks
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
)

// 打卡对话模式
const (
	ModeChain    = "chain"    // step1 → step2 → step3
	ModeCoverage = "coverage" // step1 的每个选项各调用一次 step2
	ModeReport   = "report"   // chain 之后再请求一次日报
)

// Step1 规则选择的候选值
const (
	ValueLateNightFocus = "late_night_focus"
	ValueLongImmersion  = "long_immersion"
	ValueSNSGameAlt     = "sns_game_alt"
	ValueMixedPace      = "mixed_pace"
)

// ErrNoOptions 服务端未返回可选项
var ErrNoOptions = errors.New("服务端未返回可选项")

// ParseMode 校验模式名
func ParseMode(s string) (string, error) {
	switch s {
	case "", ModeChain:
		return ModeChain, nil
	case ModeCoverage, ModeReport:
		return s, nil
	default:
		return "", fmt.Errorf("未知模式 %q（可选 chain | coverage | report）", s)
	}
}

// Answer 一步的作答，对应请求中的 previous_answers 元素
type Answer struct {
	Step           int      `json:"step"`
	SelectedValues []string `json:"selected_values"`
	FreeText       string   `json:"free_text"`
}

// StepObserver 每得到一步输出时回调，name 形如 step1_output、step2_selected_<value>
// 返回错误时对话立即终止。
type StepObserver func(name string, output any) error

// ConversationConfig 配置
type ConversationConfig struct {
	CheckinEndpoint string
	ReportEndpoint  string
	Observer        StepObserver
}

// Conversation 三步打卡对话
// 严格顺序执行，每一步的输入依赖上一步的输出；任何一步失败立即终止。
type Conversation struct {
	client          *Client
	checkinEndpoint string
	reportEndpoint  string
	observer        StepObserver
}

// NewConversation 创建对话驱动
func NewConversation(client *Client, cfg *ConversationConfig) *Conversation {
	if cfg == nil {
		cfg = &ConversationConfig{}
	}
	if cfg.CheckinEndpoint == "" {
		cfg.CheckinEndpoint = "/ai/checkin-question"
	}
	if cfg.ReportEndpoint == "" {
		cfg.ReportEndpoint = "/ai/daily-report"
	}
	return &Conversation{
		client:          client,
		checkinEndpoint: cfg.CheckinEndpoint,
		reportEndpoint:  cfg.ReportEndpoint,
		observer:        cfg.Observer,
	}
}

// ChainResult chain / report 模式结果
type ChainResult struct {
	Step1   any      `json:"step1"`
	Step2   any      `json:"step2"`
	Step3   any      `json:"step3"`
	Answers []Answer `json:"answers"`
	Report  any      `json:"report,omitempty"`
}

// CoverageBranch coverage 模式下单个分支
type CoverageBranch struct {
	Value  string `json:"value"`
	Output any    `json:"output"`
}

// CoverageResult coverage 模式结果
type CoverageResult struct {
	Step1    any              `json:"step1"`
	Branches []CoverageBranch `json:"branches"`
}

func (c *Conversation) emit(name string, out any) error {
	if c.observer == nil {
		return nil
	}
	if err := c.observer(name, out); err != nil {
		return fmt.Errorf("保存 %s 失败: %w", name, err)
	}
	return nil
}

func (c *Conversation) ask(ctx context.Context, payload map[string]any) (any, error) {
	slog.Info("请求打卡问题", "url", c.client.URL(c.checkinEndpoint), "step", payload["step"])
	return c.client.PostJSON(ctx, c.checkinEndpoint, payload)
}

// RunChain 依次执行 step1 → step2 → step3；withReport 时再请求日报并校验
func (c *Conversation) RunChain(ctx context.Context, input map[string]any, withReport bool) (*ChainResult, error) {
	step1, err := c.ask(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("step1 失败: %w", err)
	}
	if err := c.emit("step1_output", step1); err != nil {
		return nil, err
	}

	picked, err := PickStep1Value(input, step1)
	if err != nil {
		return nil, fmt.Errorf("无法选择 step1 选项: %w", err)
	}
	slog.Info("按规则选择 step1 选项", "value", picked)

	answers := []Answer{{Step: 1, SelectedValues: []string{picked}, FreeText: ""}}
	step2, err := c.ask(ctx, NextInput(input, 2, answers))
	if err != nil {
		return nil, fmt.Errorf("step2 失败: %w", err)
	}
	if err := c.emit("step2_output", step2); err != nil {
		return nil, err
	}

	step2Picked, ok := firstOptionValue(step2)
	if !ok {
		return nil, fmt.Errorf("step2 无可选项，无法进入 step3: %w", ErrNoOptions)
	}
	slog.Info("选择 step2 首个选项", "value", step2Picked)

	answers = append(answers, Answer{Step: 2, SelectedValues: []string{step2Picked}, FreeText: ""})
	step3, err := c.ask(ctx, NextInput(input, 3, answers))
	if err != nil {
		return nil, fmt.Errorf("step3 失败: %w", err)
	}
	if err := c.emit("step3_output", step3); err != nil {
		return nil, err
	}

	step3Values := []string{}
	if v, ok := firstOptionValue(step3); ok {
		step3Values = append(step3Values, v)
	}
	answers = append(answers, Answer{Step: 3, SelectedValues: step3Values, FreeText: ""})

	result := &ChainResult{Step1: step1, Step2: step2, Step3: step3, Answers: answers}
	if !withReport {
		return result, nil
	}

	reportInput := BuildReportInput(input, answers)
	slog.Info("请求日报", "url", c.client.URL(c.reportEndpoint))
	report, err := c.client.PostJSON(ctx, c.reportEndpoint, reportInput)
	if err != nil {
		return nil, fmt.Errorf("日报请求失败: %w", err)
	}
	if err := c.emit("report_output", report); err != nil {
		return nil, err
	}
	result.Report = report

	if err := ValidateReport(report); err != nil {
		return result, err
	}
	return result, nil
}

// RunCoverage 对 step1 的每个选项分别调用一次 step2（顺序执行）
func (c *Conversation) RunCoverage(ctx context.Context, input map[string]any) (*CoverageResult, error) {
	step1, err := c.ask(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("step1 失败: %w", err)
	}
	if err := c.emit("step1_output", step1); err != nil {
		return nil, err
	}

	opts := stepOptions(step1)
	if len(opts) == 0 {
		return nil, fmt.Errorf("step1 无可选项，无法执行 coverage: %w", ErrNoOptions)
	}

	result := &CoverageResult{Step1: step1}
	for _, opt := range opts {
		value, ok := optionValue(opt)
		if !ok {
			slog.Warn("跳过缺少 value 的选项", "option", opt)
			continue
		}
		answers := []Answer{{Step: 1, SelectedValues: []string{value}, FreeText: ""}}
		step2, err := c.ask(ctx, NextInput(input, 2, answers))
		if err != nil {
			return nil, fmt.Errorf("step2（选择 %s）失败: %w", value, err)
		}
		if err := c.emit("step2_selected_"+value, step2); err != nil {
			return nil, err
		}
		result.Branches = append(result.Branches, CoverageBranch{Value: value, Output: step2})
	}
	return result, nil
}

// NextInput 基于 step1 输入构造下一步请求（浅拷贝，覆盖 step 与 previous_answers）
func NextInput(base map[string]any, step int, answers []Answer) map[string]any {
	next := maps.Clone(base)
	if next == nil {
		next = map[string]any{}
	}
	next["step"] = step
	next["previous_answers"] = append([]Answer(nil), answers...)
	return next
}

// PickStep1Value 按当日指标确定性选择 step1 选项
// 候选顺序：late_night_focus（深夜≥120 分钟）、long_immersion（最长时段≥60 分钟）、
// sns_game_alt（首个切换对≥5 次）、mixed_pace；都不存在时取第一个选项。
func PickStep1Value(input map[string]any, step1 any) (string, error) {
	opts := stepOptions(step1)
	present := make(map[string]struct{}, len(opts))
	for _, opt := range opts {
		if v, ok := optionValue(opt); ok {
			present[v] = struct{}{}
		}
	}

	metrics := lookup(input, "context", "today_metrics")
	late := toNumber(lookup(metrics, "late_night_minutes"))
	maxSession := toNumber(lookup(metrics, "session_features", "max_session_minutes"))
	topSwitch := 0.0
	if pairs, ok := lookup(metrics, "session_features", "top_switch_pairs").([]any); ok && len(pairs) > 0 {
		topSwitch = toNumber(lookup(pairs[0], "count"))
	}

	var candidates []string
	if late >= 120 {
		candidates = append(candidates, ValueLateNightFocus)
	}
	if maxSession >= 60 {
		candidates = append(candidates, ValueLongImmersion)
	}
	if topSwitch >= 5 {
		candidates = append(candidates, ValueSNSGameAlt)
	}
	candidates = append(candidates, ValueMixedPace)

	for _, v := range candidates {
		if _, ok := present[v]; ok {
			return v, nil
		}
	}
	if v, ok := firstOptionValue(step1); ok {
		return v, nil
	}
	return "", ErrNoOptions
}

// stepOptions 取响应中的 options 数组
func stepOptions(resp any) []any {
	opts, _ := lookup(resp, "options").([]any)
	return opts
}

// optionValue 取选项的 value，缺失或为 null 时 ok=false
func optionValue(opt any) (string, bool) {
	v := lookup(opt, "value")
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	default:
		return fmt.Sprint(val), true
	}
}

func firstOptionValue(resp any) (string, bool) {
	opts := stepOptions(resp)
	if len(opts) == 0 {
		return "", false
	}
	v, ok := optionValue(opts[0])
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

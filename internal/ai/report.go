package ai

import (
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// 日报字段长度上限（UTF-16 码元，NFC 规范化后计数）
const (
	MaxReportTitleLen     = 24
	MaxReportSummaryLen   = 220
	MaxSuggestionTitleLen = 16
	MinReportComments     = 1
	MaxReportComments     = 3
)

var validDifficulties = map[string]struct{}{"easy": {}, "medium": {}, "hard": {}}

// BuildReportInput 由 step1 输入与三步作答组装日报请求
// user_profile 取 context.user_profile，缺失时退回 context.profile。
func BuildReportInput(input map[string]any, answers []Answer) map[string]any {
	profile := lookup(input, "context", "user_profile")
	if profile == nil {
		profile = lookup(input, "context", "profile")
	}

	answerFor := func(i int) map[string]any {
		selected := []string{}
		freeText := ""
		if i < len(answers) {
			if answers[i].SelectedValues != nil {
				selected = answers[i].SelectedValues
			}
			freeText = answers[i].FreeText
		}
		return map[string]any{"selected_values": selected, "free_text": freeText}
	}

	return map[string]any{
		"user_profile":  profile,
		"today_metrics": lookup(input, "context", "today_metrics"),
		"profile_metrics": map[string]any{
			"baseline_available": false,
		},
		"checkin_answers": map[string]any{
			"completed": true,
			"step1":     answerFor(0),
			"step2":     answerFor(1),
			"step3":     answerFor(2),
		},
		"constraints": map[string]any{
			"source_of_truth":                  "summary_first",
			"raw_is_partial_example":           true,
			"do_not_recompute_totals_from_raw": true,
			"do_not_infer_missing":             true,
		},
	}
}

// ReportValidationError 日报未通过校验（只报告第一条失败的规则）
type ReportValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ReportValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("日报校验失败: %s (值: %v)", e.Reason, e.Value)
	}
	return fmt.Sprintf("日报校验失败: %s %s (值: %v)", e.Field, e.Reason, e.Value)
}

// TextLength 文本长度，按 NFC 规范化后的 UTF-16 码元计数
func TextLength(s string) int {
	return len(utf16.Encode([]rune(norm.NFC.String(s))))
}

// ValidateReport 按顺序校验日报结构，遇到第一条失败立即返回
func ValidateReport(report any) error {
	obj, ok := report.(map[string]any)
	if !ok {
		return &ReportValidationError{Value: report, Reason: "日报不是 JSON 对象"}
	}

	if err := checkString(obj, "title", "title", MaxReportTitleLen); err != nil {
		return err
	}
	if err := checkString(obj, "summary", "summary", MaxReportSummaryLen); err != nil {
		return err
	}

	comments, ok := obj["comments"].([]any)
	if !ok {
		return &ReportValidationError{Field: "comments", Value: obj["comments"], Reason: "必须是数组"}
	}
	if len(comments) < MinReportComments || len(comments) > MaxReportComments {
		return &ReportValidationError{Field: "comments", Value: len(comments), Reason: fmt.Sprintf("长度必须在 %d-%d 之间", MinReportComments, MaxReportComments)}
	}

	suggestions, ok := obj["suggestions"].([]any)
	if !ok {
		return &ReportValidationError{Field: "suggestions", Value: obj["suggestions"], Reason: "必须是数组"}
	}
	if len(suggestions) != 1 {
		return &ReportValidationError{Field: "suggestions", Value: len(suggestions), Reason: "长度必须为 1"}
	}

	s, ok := suggestions[0].(map[string]any)
	if !ok {
		return &ReportValidationError{Field: "suggestions[0]", Value: suggestions[0], Reason: "必须是对象"}
	}
	if err := checkString(s, "title", "suggestions[0].title", MaxSuggestionTitleLen); err != nil {
		return err
	}
	if err := checkString(s, "description", "suggestions[0].description", 0); err != nil {
		return err
	}
	if err := checkString(s, "why_this", "suggestions[0].why_this", 0); err != nil {
		return err
	}
	difficulty, _ := s["difficulty"].(string)
	if _, ok := validDifficulties[difficulty]; !ok {
		return &ReportValidationError{Field: "suggestions[0].difficulty", Value: s["difficulty"], Reason: "必须是 easy | medium | hard"}
	}
	return nil
}

// checkString 字段必须是字符串；maxLen>0 时同时检查长度
func checkString(obj map[string]any, key, field string, maxLen int) error {
	v, ok := obj[key].(string)
	if !ok {
		return &ReportValidationError{Field: field, Value: obj[key], Reason: "缺失或不是字符串"}
	}
	if maxLen > 0 {
		if n := TextLength(v); n > maxLen {
			return &ReportValidationError{Field: field, Value: n, Reason: fmt.Sprintf("过长（上限 %d）", maxLen)}
		}
	}
	return nil
}

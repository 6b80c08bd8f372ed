package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuqie6/WellMirror/internal/model"
)

// DefaultCommentEndpoint 代理上的日报评语接口
const DefaultCommentEndpoint = "/api/ai/daily-report"

// SimilarDay 相似的历史日（来自长期记忆）
type SimilarDay struct {
	Date       string  `json:"date"`
	Score      int     `json:"score"`
	Similarity float32 `json:"similarity"`
	Comment    string  `json:"comment,omitempty"` // 当日评语摘要
}

// CommentRequest 打卡完成后请求 AI 评语
type CommentRequest struct {
	UserID        string                 `json:"user_id"`
	Date          string                 `json:"date"`
	TotalScore    int                    `json:"totalScore"`
	Usage         model.UsageData        `json:"usage"`
	Notifications model.NotificationData `json:"notifications"`
	CheckIn       model.MobileCheckIn    `json:"checkIn"`
	Profile       model.UserProfile      `json:"profile"`
	SimilarDays   []SimilarDay           `json:"similar_days,omitempty"`
}

// CommentResult AI 评语
type CommentResult struct {
	Comment    string `json:"comment"`
	Suggestion string `json:"suggestion"`
}

// CommentClient 通过代理请求评语
type CommentClient struct {
	client   *Client
	endpoint string
}

// NewCommentClient 创建评语客户端
func NewCommentClient(client *Client, endpoint string) *CommentClient {
	if endpoint == "" {
		endpoint = DefaultCommentEndpoint
	}
	return &CommentClient{client: client, endpoint: endpoint}
}

// GenerateComment 请求评语
// 响应可以是 {comment, suggestion}，也可以是完整日报（取 summary 与首条建议）。
func (c *CommentClient) GenerateComment(ctx context.Context, req *CommentRequest) (*CommentResult, error) {
	if req == nil {
		return nil, fmt.Errorf("req 不能为空")
	}
	resp, err := c.client.PostJSON(ctx, c.endpoint, req)
	if err != nil {
		return nil, err
	}
	return ParseCommentResponse(resp)
}

// ParseCommentResponse 解析评语响应
func ParseCommentResponse(resp any) (*CommentResult, error) {
	comment, _ := lookup(resp, "comment").(string)
	suggestion, _ := lookup(resp, "suggestion").(string)

	if comment == "" {
		if summary, ok := lookup(resp, "summary").(string); ok {
			comment = summary
		}
	}
	if suggestion == "" {
		if list, ok := lookup(resp, "suggestions").([]any); ok && len(list) > 0 {
			title, _ := lookup(list[0], "title").(string)
			desc, _ := lookup(list[0], "description").(string)
			switch {
			case title != "" && desc != "":
				suggestion = title + "：" + desc
			default:
				suggestion = title + desc
			}
		}
	}

	comment = strings.TrimSpace(comment)
	suggestion = strings.TrimSpace(suggestion)
	if comment == "" || suggestion == "" {
		return nil, fmt.Errorf("AI 响应缺少 comment 或 suggestion")
	}
	return &CommentResult{Comment: comment, Suggestion: suggestion}, nil
}

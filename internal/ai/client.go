package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client AI 服务 JSON 客户端
// 任何非 2xx 或非 JSON 响应都直接返回错误，不做重试。
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientConfig 配置
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient 创建客户端
func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL 服务地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL 拼接完整地址
func (c *Client) URL(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// HTTPStatusError 服务端返回非 2xx
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("服务端错误: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), truncate(e.Body, 500))
}

// NonJSONError 服务端返回 2xx 但响应不是 JSON
type NonJSONError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *NonJSONError) Error() string {
	return fmt.Sprintf("服务端返回非 JSON: %s", truncate(e.Body, 500))
}

func (e *NonJSONError) Unwrap() error {
	return e.Err
}

// PostJSON 发送 JSON 请求并解析 JSON 响应
// 数字以 json.Number 保留，便于原样回传。
func (c *Client) PostJSON(ctx context.Context, path string, payload any) (any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body)
}

// GetJSON GET 请求并解析 JSON 响应（探活等）
func (c *Client) GetJSON(ctx context.Context, path string) (any, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (any, error) {
	url := c.URL(path)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("AI 服务返回错误", "url", url, "status", resp.StatusCode, "body", truncate(string(respBody), 500))
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	out, err := DecodeJSON(respBody)
	if err != nil {
		return nil, &NonJSONError{URL: url, StatusCode: resp.StatusCode, Body: string(respBody), Err: err}
	}

	slog.Debug("AI 服务调用成功", "url", url, "status", resp.StatusCode)
	return out, nil
}

// DecodeJSON 解析任意 JSON 值（数字保留为 json.Number），不允许尾随内容
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("JSON 之后存在多余内容")
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

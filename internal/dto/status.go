package dto

// HealthDTO 本地 Agent 健康检查
type HealthDTO struct {
	OK        bool   `json:"ok"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	StartedAt string `json:"started_at"`
	SafeMode  bool   `json:"safe_mode"`

	MemoryPath  string `json:"memory_path,omitempty"` // 为空表示记忆仅在内存中
	MemoryCount int    `json:"memory_count"`
}

// ProxyHealthDTO 代理健康检查，字段与原部署保持一致
type ProxyHealthDTO struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	AIServer string `json:"ai_server"`
}

// ProxyAIHealthDTO 代理对上游 AI 服务的探活结果
// ai_service 为上游 /health 的原始响应，不可达时为 "unreachable"
type ProxyAIHealthDTO struct {
	Proxy     string `json:"proxy"`
	AIService any    `json:"ai_service"`
}

// 代理错误类型
const (
	ErrorTypeBadRequest      = "bad_request"
	ErrorTypeTooLarge        = "request_too_large"
	ErrorTypeAIBackend       = "ai_backend_error"
	ErrorTypeInvalidResponse = "ai_backend_invalid_response"
	ErrorTypeProxyInternal   = "proxy_internal_error"
)

// ProxyErrorDTO 代理错误响应体
type ProxyErrorDTO struct {
	Message        string `json:"message"`
	ErrorType      string `json:"error_type,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	Missing        string `json:"missing,omitempty"`
}

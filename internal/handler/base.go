package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yuqie6/WellMirror/internal/bootstrap"
	"github.com/yuqie6/WellMirror/internal/dto"
	"github.com/yuqie6/WellMirror/internal/pkg/buildinfo"
)

// API HTTP 处理器
type API struct {
	core      *bootstrap.Core
	startTime time.Time
}

// NewAPI 创建 API 处理器
func NewAPI(core *bootstrap.Core) *API {
	return &API{
		core:      core,
		startTime: time.Now(),
	}
}

// HandleHealth 健康检查接口
func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if a == nil || a.core == nil || a.core.Cfg == nil {
		WriteError(w, http.StatusServiceUnavailable, "core 未初始化")
		return
	}
	health := dto.HealthDTO{
		OK:        true,
		Name:      a.core.Cfg.App.Name,
		Version:   buildinfo.Version,
		StartedAt: a.startTime.Format(time.RFC3339),
		SafeMode:  a.core.DB != nil && a.core.DB.SafeMode,
	}
	if mem := a.core.Services.Memory; mem != nil {
		health.MemoryPath = mem.GetStoragePath()
		health.MemoryCount = mem.Count()
	}
	WriteJSON(w, http.StatusOK, health)
}

// HandleSSE Server-Sent Events 接口
func (a *API) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "stream not supported")
		return
	}
	if a == nil || a.core == nil || a.core.Hub == nil {
		WriteError(w, http.StatusServiceUnavailable, "hub 未初始化")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	sub := a.core.Hub.Subscribe(ctx, 32)

	_, _ = io.WriteString(w, "event: ready\n")
	_, _ = io.WriteString(w, "data: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, "event: ping\n")
			_, _ = io.WriteString(w, "data: {}\n\n")
			flusher.Flush()
		case evt, ok := <-sub:
			if !ok {
				return
			}
			b, _ := json.Marshal(evt)
			_, _ = io.WriteString(w, "event: "+sanitizeSSEName(evt.Type)+"\n")
			_, _ = io.WriteString(w, "data: ")
			_, _ = w.Write(b)
			_, _ = io.WriteString(w, "\n\n")
			flusher.Flush()
		}
	}
}

// sanitizeSSEName 清理 SSE 事件名称
func sanitizeSSEName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return "message"
	}
	n = strings.ReplaceAll(n, "\n", "")
	n = strings.ReplaceAll(n, "\r", "")
	return n
}

func (a *API) requireWritableDB(w http.ResponseWriter) bool {
	if a == nil || a.core == nil || a.core.DB == nil {
		WriteAPIError(w, http.StatusServiceUnavailable, APIError{
			Error: "数据库未初始化",
			Code:  "db_not_ready",
			Hint:  "请稍后重试；若持续失败，请检查日志",
		})
		return false
	}
	if a.core.DB.SafeMode {
		WriteAPIError(w, http.StatusServiceUnavailable, APIError{
			Error: "数据库处于安全模式，已禁用写入操作",
			Code:  "db_safe_mode",
			Hint:  "请查看日志中的迁移错误；修复后重启 Agent",
		})
		return false
	}
	return true
}

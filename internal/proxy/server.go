package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yuqie6/WellMirror/internal/ai"
	"github.com/yuqie6/WellMirror/internal/dto"
)

const maxBodyBytes = 1 << 20

// Server 日报代理：校验必填字段后将请求体原样转发到上游 AI 服务
type Server struct {
	cfg      *Config
	upstream *ai.Client
}

// NewServer 创建代理
func NewServer(cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()
	return &Server{
		cfg:      cfg,
		upstream: ai.NewClient(&ai.ClientConfig{BaseURL: cfg.UpstreamURL, Timeout: cfg.Timeout}),
	}
}

// Handler 返回挂载全部路由的 chi router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/health/ai", s.handleAIHealth)
	r.Post("/api/ai/daily-report", s.handleDailyReport)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// ListenAndServe 启动 HTTP 服务，ctx 结束时优雅关闭
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("代理已启动", "addr", s.cfg.ListenAddr, "upstream", s.upstream.URL(s.cfg.UpstreamPath))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ProxyHealthDTO{
		Status:   "ok",
		Service:  s.cfg.ServiceName,
		AIServer: s.upstream.BaseURL(),
	})
}

func (s *Server) handleAIHealth(w http.ResponseWriter, r *http.Request) {
	data, err := s.upstream.GetJSON(r.Context(), "/health")
	if err != nil {
		slog.Warn("AI 服务探活失败", "upstream", s.upstream.BaseURL(), "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ProxyAIHealthDTO{Proxy: "ok", AIService: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, dto.ProxyAIHealthDTO{Proxy: "ok", AIService: data})
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		relayRequests.WithLabelValues(outcomeBadRequest).Inc()
		writeJSON(w, http.StatusRequestEntityTooLarge, dto.ProxyErrorDTO{Message: "请求体超过大小限制", ErrorType: dto.ErrorTypeTooLarge})
		return
	}
	if err != nil {
		relayRequests.WithLabelValues(outcomeBadRequest).Inc()
		writeJSON(w, http.StatusBadRequest, dto.ProxyErrorDTO{Message: "读取请求体失败", ErrorType: dto.ErrorTypeBadRequest})
		return
	}

	if missing, ok := missingField(body, s.cfg.RequiredFields); !ok {
		relayRequests.WithLabelValues(outcomeBadRequest).Inc()
		msg := "请求无效，需要 JSON 对象"
		if missing != "" {
			msg = "请求无效，缺少字段 " + missing
		}
		writeJSON(w, http.StatusBadRequest, dto.ProxyErrorDTO{Message: msg, ErrorType: dto.ErrorTypeBadRequest, Missing: missing})
		return
	}

	start := time.Now()
	data, err := s.upstream.PostJSON(r.Context(), s.cfg.UpstreamPath, json.RawMessage(body))
	upstreamDuration.Observe(time.Since(start).Seconds())

	var statusErr *ai.HTTPStatusError
	var nonJSON *ai.NonJSONError
	switch {
	case err == nil:
		relayRequests.WithLabelValues(outcomeOK).Inc()
		writeJSON(w, http.StatusOK, data)
	case errors.As(err, &statusErr):
		relayRequests.WithLabelValues(outcomeUpstreamError).Inc()
		writeJSON(w, http.StatusBadGateway, dto.ProxyErrorDTO{
			Message:        "AI 服务返回错误，请稍后重试",
			ErrorType:      dto.ErrorTypeAIBackend,
			UpstreamStatus: statusErr.StatusCode,
		})
	case errors.As(err, &nonJSON):
		relayRequests.WithLabelValues(outcomeInvalidResponse).Inc()
		slog.Error("AI 服务返回非 JSON", "status", nonJSON.StatusCode, "error", nonJSON.Err)
		writeJSON(w, http.StatusBadGateway, dto.ProxyErrorDTO{
			Message:        "AI 服务响应无法解析",
			ErrorType:      dto.ErrorTypeInvalidResponse,
			UpstreamStatus: nonJSON.StatusCode,
		})
	default:
		relayRequests.WithLabelValues(outcomeInternal).Inc()
		slog.Error("代理转发失败", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ProxyErrorDTO{
			Message:   "代理内部错误，请稍后重试",
			ErrorType: dto.ErrorTypeProxyInternal,
		})
	}
}

// missingField 检查请求体为 JSON 对象且包含全部必填字段（值为 null 也视为存在）
// 返回 ok=false 时 missing 为空表示请求体本身不是对象。
func missingField(body []byte, required []string) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return "", false
	}
	for _, f := range required {
		if _, ok := obj[f]; !ok {
			return f, false
		}
	}
	return "", true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// corsMiddleware 允许任意来源（前端与代理分开部署）
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

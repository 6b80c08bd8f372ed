package proxy

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yuqie6/WellMirror/internal/pkg/config"
)

// Config 代理运行配置
type Config struct {
	ServiceName    string
	ListenAddr     string
	UpstreamURL    string
	UpstreamPath   string   // 上游日报路径
	RequiredFields []string // 转发前必须存在的顶层字段
	Timeout        time.Duration
}

// deployEnv 原部署沿用的环境变量
type deployEnv struct {
	Port         string `env:"PORT"`
	AIServiceURL string `env:"AI_SERVICE_URL"`
	FastAPIURL   string `env:"FASTAPI_URL"`
}

// FromAppConfig 从应用配置构建，并叠加 PORT / AI_SERVICE_URL / FASTAPI_URL
func FromAppConfig(cfg *config.Config) (*Config, error) {
	out := &Config{
		ServiceName:    "well-proxy",
		ListenAddr:     cfg.Proxy.ListenAddr,
		UpstreamURL:    cfg.Proxy.UpstreamURL,
		UpstreamPath:   cfg.AI.ReportEndpoint,
		RequiredFields: cfg.Proxy.RequiredFields,
		Timeout:        time.Duration(cfg.Proxy.TimeoutSec) * time.Second,
	}

	var e deployEnv
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}
	if p := strings.TrimSpace(e.Port); p != "" {
		out.ListenAddr = ":" + p
	}
	switch {
	case strings.TrimSpace(e.AIServiceURL) != "":
		out.UpstreamURL = strings.TrimSpace(e.AIServiceURL)
	case strings.TrimSpace(e.FastAPIURL) != "":
		out.UpstreamURL = strings.TrimSpace(e.FastAPIURL)
	}

	out.applyDefaults()
	return out, nil
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "well-proxy"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":4000"
	}
	if c.UpstreamURL == "" {
		c.UpstreamURL = "http://localhost:8000"
	}
	if c.UpstreamPath == "" {
		c.UpstreamPath = "/ai/daily-report"
	}
	if c.RequiredFields == nil {
		c.RequiredFields = []string{"totalScore"}
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

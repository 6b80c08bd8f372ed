package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
			"log_path":  cfg.App.LogPath,
			"timezone":  cfg.App.Timezone,
		},
		"storage": map[string]any{
			"db_path":     cfg.Storage.DBPath,
			"memory_path": cfg.Storage.MemoryPath,
		},
		"ai": map[string]any{
			"server_url":       cfg.AI.ServerURL,
			"checkin_endpoint": cfg.AI.CheckinEndpoint,
			"report_endpoint":  cfg.AI.ReportEndpoint,
			"proxy_url":        cfg.AI.ProxyURL,
			"timeout_sec":      cfg.AI.TimeoutSec,
			"user_id":          cfg.AI.UserID,
		},
		"usage": map[string]any{
			"import_dir":   cfg.Usage.ImportDir,
			"debounce_sec": cfg.Usage.DebounceSec,
		},
		"proxy": map[string]any{
			"listen_addr":     cfg.Proxy.ListenAddr,
			"upstream_url":    cfg.Proxy.UpstreamURL,
			"required_fields": cfg.Proxy.RequiredFields,
			"timeout_sec":     cfg.Proxy.TimeoutSec,
		},
		"agent": map[string]any{
			"listen_addr": cfg.Agent.ListenAddr,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

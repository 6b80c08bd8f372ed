package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	AI      AIConfig      `mapstructure:"ai"`
	Usage   UsageConfig   `mapstructure:"usage"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Agent   AgentConfig   `mapstructure:"agent"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
	Timezone string `mapstructure:"timezone"` // 连续打卡按该时区的自然日计算
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	MemoryPath string `mapstructure:"memory_path"` // 相似日向量库目录
}

// AIConfig AI 服务配置
type AIConfig struct {
	ServerURL       string `mapstructure:"server_url"`       // AI 服务器（问答/日报）
	CheckinEndpoint string `mapstructure:"checkin_endpoint"` // 打卡问答路径
	ReportEndpoint  string `mapstructure:"report_endpoint"`  // 日报路径
	ProxyURL        string `mapstructure:"proxy_url"`        // 评语代理（well-proxy）
	TimeoutSec      int    `mapstructure:"timeout_sec"`
	UserID          string `mapstructure:"user_id"`
}

// UsageConfig 使用数据导入配置
type UsageConfig struct {
	ImportDir   string `mapstructure:"import_dir"`
	DebounceSec int    `mapstructure:"debounce_sec"`
}

// ProxyConfig 代理配置
type ProxyConfig struct {
	ListenAddr     string   `mapstructure:"listen_addr"`
	UpstreamURL    string   `mapstructure:"upstream_url"`
	RequiredFields []string `mapstructure:"required_fields"`
	TimeoutSec     int      `mapstructure:"timeout_sec"`
}

// AgentConfig 本地 Agent 配置
type AgentConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("WELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.AI.ServerURL = expandEnv(cfg.AI.ServerURL)
	cfg.AI.ProxyURL = expandEnv(cfg.AI.ProxyURL)
	cfg.AI.UserID = expandEnv(cfg.AI.UserID)
	cfg.Proxy.UpstreamURL = expandEnv(cfg.Proxy.UpstreamURL)

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.Storage.MemoryPath = resolvePath(cfg.Storage.MemoryPath)
	if cfg.Usage.ImportDir != "" {
		cfg.Usage.ImportDir = resolvePath(cfg.Usage.ImportDir)
	}
	if cfg.App.LogPath != "" {
		cfg.App.LogPath = resolvePath(cfg.App.LogPath)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default 返回仅包含默认值的配置（用于首次启动写出配置文件）
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "well-agent")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_path", "")
	v.SetDefault("app.timezone", "Local")

	// Storage
	v.SetDefault("storage.db_path", "./data/well.db")
	v.SetDefault("storage.memory_path", "./data/memory")

	// AI
	v.SetDefault("ai.server_url", "http://localhost:8000")
	v.SetDefault("ai.checkin_endpoint", "/ai/checkin-question")
	v.SetDefault("ai.report_endpoint", "/ai/daily-report")
	v.SetDefault("ai.proxy_url", "http://localhost:4000")
	v.SetDefault("ai.timeout_sec", 60)
	v.SetDefault("ai.user_id", "local")

	// Usage
	v.SetDefault("usage.import_dir", "./data/usage")
	v.SetDefault("usage.debounce_sec", 2)

	// Proxy
	v.SetDefault("proxy.listen_addr", ":4000")
	v.SetDefault("proxy.upstream_url", "http://localhost:8000")
	v.SetDefault("proxy.required_fields", []string{"totalScore"})
	v.SetDefault("proxy.timeout_sec", 60)

	// Agent
	v.SetDefault("agent.listen_addr", "127.0.0.1:4100")
}

// Location 返回配置的时区；"Local" 或空值使用系统时区
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.App.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("加载时区 %q 失败: %w", name, err)
	}
	return loc, nil
}

// AITimeout AI 请求超时
func (c *Config) AITimeout() time.Duration {
	if c.AI.TimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.AI.TimeoutSec) * time.Second
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}

	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

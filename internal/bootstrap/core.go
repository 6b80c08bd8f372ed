package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yuqie6/WellMirror/internal/ai"
	"github.com/yuqie6/WellMirror/internal/eventbus"
	"github.com/yuqie6/WellMirror/internal/pkg/config"
	"github.com/yuqie6/WellMirror/internal/repository"
	"github.com/yuqie6/WellMirror/internal/service"
)

// Core 持有跨二进制共享的核心依赖
type Core struct {
	Cfg       *config.Config
	DB        *repository.Database
	Hub       *eventbus.Hub
	Location  *time.Location
	LogCloser io.Closer

	Repos struct {
		Profile *repository.ProfileRepository
		Report  *repository.ReportRepository
		Usage   *repository.UsageRepository
		KV      *repository.KVRepository
	}

	Services struct {
		Profiles *service.ProfileService
		CheckIns *service.CheckInService
		Usage    *service.UsageService
		Trends   *service.TrendService
		State    *service.AppState
		Memory   *service.ReportMemory
	}

	Clients struct {
		AI        *ai.Client
		Proxy     *ai.Client
		Commenter *ai.CommentClient
	}
}

// NewCore 构建核心依赖（不启动目录监听）
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logCloser, _ := config.SetupLogger(config.LoggerOptions{
		Level:     cfg.App.LogLevel,
		Path:      cfg.App.LogPath,
		Component: filepath.Base(os.Args[0]),
	})

	c, err := NewCoreWithConfig(cfg)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, err
	}
	c.LogCloser = logCloser
	return c, nil
}

// NewCoreWithConfig 使用已加载的配置构建核心依赖
func NewCoreWithConfig(cfg *config.Config) (*Core, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db, Hub: eventbus.NewHub(), Location: loc}

	// Repos
	c.Repos.Profile = repository.NewProfileRepository(db.DB)
	c.Repos.Report = repository.NewReportRepository(db.DB)
	c.Repos.Usage = repository.NewUsageRepository(db.DB)
	c.Repos.KV = repository.NewKVRepository(db.DB)

	// Clients
	c.Clients.AI = ai.NewClient(&ai.ClientConfig{BaseURL: cfg.AI.ServerURL, Timeout: cfg.AITimeout()})
	c.Clients.Proxy = ai.NewClient(&ai.ClientConfig{BaseURL: cfg.AI.ProxyURL, Timeout: cfg.AITimeout()})
	c.Clients.Commenter = ai.NewCommentClient(c.Clients.Proxy, ai.DefaultCommentEndpoint)

	// 长期记忆（失败时降级为不检索相似日）
	memory, err := service.NewReportMemory(&service.ReportMemoryConfig{StoragePath: cfg.Storage.MemoryPath})
	if err != nil {
		slog.Warn("长期记忆初始化失败，跳过相似日检索", "error", err)
		memory = nil
	}
	c.Services.Memory = memory

	var indexer service.MemoryIndexer
	if memory != nil {
		indexer = memory
	}

	// Services
	c.Services.Profiles = service.NewProfileService(c.Repos.Profile, c.Repos.Report, c.Repos.Usage, indexer)
	c.Services.CheckIns = service.NewCheckInService(
		c.Repos.Profile,
		c.Repos.Report,
		c.Repos.Usage,
		c.Clients.Commenter,
		indexer,
		c.Hub,
		&service.CheckInConfig{UserID: cfg.AI.UserID, Location: loc},
	)
	c.Services.Usage = service.NewUsageService(c.Repos.Profile, c.Repos.Usage, c.Hub, loc)
	c.Services.Trends = service.NewTrendService(c.Repos.Report, loc)
	c.Services.State = service.NewAppState(c.Repos.KV)

	if err := c.Services.State.Hydrate(context.Background()); err != nil {
		slog.Warn("恢复登录状态失败", "error", err)
	}
	if memory != nil && !db.SafeMode {
		c.rebuildMemory(context.Background())
	}

	return c, nil
}

// rebuildMemory 记忆为空时从历史日报重建
func (c *Core) rebuildMemory(ctx context.Context) {
	reports, err := c.Repos.Report.List(ctx, 0)
	if err != nil {
		slog.Warn("读取历史日报失败", "error", err)
		return
	}
	if _, err := c.Services.Memory.Rebuild(ctx, reports); err != nil {
		slog.Warn("重建长期记忆失败", "error", err)
	}
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	var dbErr error
	if c.DB != nil {
		dbErr = c.DB.Close()
	}
	if c.LogCloser != nil {
		_ = c.LogCloser.Close()
	}
	return dbErr
}

// RequireWritable 数据库处于安全模式时拒绝写入
func (c *Core) RequireWritable() error {
	if c.DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	if c.DB.SafeMode {
		return fmt.Errorf("数据库处于安全模式，已禁用写入: %s", c.DB.MigrationError)
	}
	return nil
}

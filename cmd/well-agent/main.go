package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuqie6/WellMirror/internal/bootstrap"
	"github.com/yuqie6/WellMirror/internal/collector"
	"github.com/yuqie6/WellMirror/internal/pkg/config"
	"github.com/yuqie6/WellMirror/internal/server"
	"github.com/yuqie6/WellMirror/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 首次启动时在可执行文件旁写出默认配置
	cfgPath, cfgErr := config.DefaultConfigPath()
	if cfgErr == nil {
		if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
			_ = config.WriteFile(cfgPath, config.Default())
		}
	}

	core, err := bootstrap.NewCore(cfgPath)
	if err != nil {
		slog.Error("启动 Agent 失败", "error", err)
		os.Exit(1)
	}
	defer core.Close()

	slog.Info("WellMirror Agent 启动中...", "name", core.Cfg.App.Name, "version", core.Cfg.App.Version)

	// ========== 使用数据导入 ==========
	var importer *service.UsageImportService
	watcher, err := collector.NewUsageImportWatcher(&collector.UsageImportConfig{
		Dir:      core.Cfg.Usage.ImportDir,
		Debounce: time.Duration(core.Cfg.Usage.DebounceSec) * time.Second,
	})
	if err != nil {
		slog.Warn("使用数据导入不可用", "error", err)
	} else {
		importer = service.NewUsageImportService(watcher, core.Services.Usage)
		if err := importer.Start(ctx); err != nil {
			slog.Warn("启动使用数据导入失败", "error", err)
			importer = nil
		} else {
			slog.Info("监听使用数据导出目录", "dir", watcher.Dir())
		}
	}

	// ========== 本地 API ==========
	srv, err := server.Start(ctx, core, server.Options{ListenAddr: core.Cfg.Agent.ListenAddr})
	if err != nil {
		slog.Error("启动本地 API 失败", "error", err)
		os.Exit(1)
	}
	slog.Info("WellMirror Agent 已启动", "url", srv.BaseURL())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("收到系统退出信号，正在关闭...")

	cancel()
	if importer != nil {
		_ = importer.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = srv.Shutdown(shutdownCtx)
	shutdownCancel()

	slog.Info("WellMirror Agent 已退出")
}

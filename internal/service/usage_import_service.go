package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/yuqie6/WellMirror/internal/collector"
)

// UsageImportService 消费目录监听事件并导入使用数据
type UsageImportService struct {
	source   UsageImportSource
	usage    *UsageService
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// NewUsageImportService 创建导入服务
func NewUsageImportService(source UsageImportSource, usage *UsageService) *UsageImportService {
	return &UsageImportService{
		source:   source,
		usage:    usage,
		stopChan: make(chan struct{}),
	}
}

// Start 启动服务
func (s *UsageImportService) Start(ctx context.Context) error {
	if s.running {
		return nil
	}

	s.running = true
	slog.Info("使用数据导入服务启动")

	if err := s.source.Start(ctx); err != nil {
		s.running = false
		return err
	}

	s.wg.Add(1)
	go s.processLoop(ctx)
	return nil
}

// Stop 停止服务
func (s *UsageImportService) Stop() error {
	if !s.running {
		return nil
	}

	slog.Info("正在停止使用数据导入服务...")

	_ = s.source.Stop()
	close(s.stopChan)
	s.wg.Wait()

	s.running = false
	slog.Info("使用数据导入服务已停止")
	return nil
}

func (s *UsageImportService) processLoop(ctx context.Context) {
	defer s.wg.Done()

	events := s.source.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case imp, ok := <-events:
			if !ok {
				return
			}
			s.handleImport(ctx, imp)
		}
	}
}

func (s *UsageImportService) handleImport(ctx context.Context, imp *collector.UsageImport) {
	file := filepath.Base(imp.Path)
	switch {
	case errors.Is(imp.Err, collector.ErrPermissionDenied):
		slog.Warn("使用数据导出缺少权限，请在系统设置中为应用开启使用情况访问权限", "file", file)
		return
	case imp.Err != nil:
		slog.Error("解析使用数据失败", "file", file, "error", imp.Err)
		return
	}

	if _, err := s.usage.Import(ctx, imp.Export); err != nil {
		if errors.Is(err, ErrNotOnboarded) {
			slog.Warn("尚未完成引导设置，跳过使用数据导入", "file", file)
			return
		}
		slog.Error("导入使用数据失败", "file", file, "error", err)
	}
}

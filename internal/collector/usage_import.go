package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/jsonc"
	"github.com/yuqie6/WellMirror/internal/model"
)

// ErrPermissionDenied 原生桥未获得使用情况访问权限
var ErrPermissionDenied = errors.New("未授予使用情况访问权限")

// 原生桥导出的权限错误码
const bridgeNoPermission = "NO_PERMISSION"

// UsageImport 一次导入事件
type UsageImport struct {
	Path   string
	Export *model.UsageExport
	Err    error
}

// UsageImportWatcher 监听原生桥导出目录
type UsageImportWatcher struct {
	watcher    *fsnotify.Watcher
	dir        string
	extensions map[string]bool
	eventChan  chan *UsageImport
	stopChan   chan struct{}
	running    bool
	mu         sync.Mutex
	stopOnce   sync.Once
	timers     map[string]*time.Timer // 防抖：file -> 待触发的解析
	debounce   time.Duration
	wg         sync.WaitGroup
}

// UsageImportConfig 配置
type UsageImportConfig struct {
	Dir        string        // 监控目录
	Extensions []string      // 监控的文件扩展名
	BufferSize int           // 事件缓冲区大小
	Debounce   time.Duration // 同一文件最后一次写入后等待的时间
}

// DefaultUsageImportConfig 默认配置
func DefaultUsageImportConfig() *UsageImportConfig {
	return &UsageImportConfig{
		Dir:        "./data/usage",
		Extensions: []string{".json", ".jsonc"},
		BufferSize: 64,
		Debounce:   2 * time.Second,
	}
}

// NewUsageImportWatcher 创建导入监听器
func NewUsageImportWatcher(cfg *UsageImportConfig) (*UsageImportWatcher, error) {
	def := DefaultUsageImportConfig()
	if cfg == nil {
		cfg = def
	}
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = def.Extensions
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}

	absDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("获取绝对路径失败: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建导入目录失败: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("添加监控目录失败: %w", err)
	}

	extMap := make(map[string]bool)
	for _, ext := range cfg.Extensions {
		extMap[strings.ToLower(ext)] = true
	}

	return &UsageImportWatcher{
		watcher:    watcher,
		dir:        absDir,
		extensions: extMap,
		eventChan:  make(chan *UsageImport, cfg.BufferSize),
		stopChan:   make(chan struct{}),
		timers:     make(map[string]*time.Timer),
		debounce:   cfg.Debounce,
	}, nil
}

// Dir 监控目录（绝对路径）
func (w *UsageImportWatcher) Dir() string {
	return w.dir
}

// Start 启动监听
func (w *UsageImportWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()
	slog.Info("使用数据导入监听启动", "dir", w.dir, "debounce", w.debounce)

	go w.watchLoop(ctx)
	return nil
}

// Stop 停止监听
func (w *UsageImportWatcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.running = false
		for path, t := range w.timers {
			if t.Stop() {
				w.wg.Done()
			}
			delete(w.timers, path)
		}
		w.mu.Unlock()

		close(w.stopChan)
		_ = w.watcher.Close()
		slog.Info("使用数据导入监听已停止")
	})
	return nil
}

// Events 返回导入事件通道
func (w *UsageImportWatcher) Events() <-chan *UsageImport {
	return w.eventChan
}

func (w *UsageImportWatcher) watchLoop(ctx context.Context) {
	defer func() {
		w.wg.Wait()
		close(w.eventChan)
	}()
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("文件监控错误", "error", err)
		}
	}
}

// handleFsEvent 写入/创建后延迟解析，期间的新写入重新计时
func (w *UsageImportWatcher) handleFsEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := event.Name
	if !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if t, ok := w.timers[path]; ok {
		if t.Stop() {
			w.wg.Done()
		}
	}
	w.wg.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.emit(path)
	})
}

func (w *UsageImportWatcher) emit(path string) {
	export, err := ReadUsageFile(path)
	evt := &UsageImport{Path: path, Export: export, Err: err}

	select {
	case <-w.stopChan:
		return
	default:
	}
	select {
	case w.eventChan <- evt:
		slog.Debug("使用数据导入事件已发送", "file", path, "error", err)
	default:
		slog.Warn("导入缓冲区已满，丢弃事件", "file", path)
	}
}

// ReadUsageFile 读取并解析导出文件
func ReadUsageFile(path string) (*model.UsageExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取导出文件失败: %w", err)
	}
	export, err := ParseUsageExport(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return export, nil
}

// ParseUsageExport 解析导出内容：行数组，或 {date, rows, unlockCount, error} 对象
// 允许注释与尾随逗号。
func ParseUsageExport(data []byte) (*model.UsageExport, error) {
	clean := jsonc.ToJSON(data)
	trimmed := strings.TrimSpace(string(clean))
	if trimmed == "" {
		return nil, fmt.Errorf("导出内容为空")
	}

	var export model.UsageExport
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(clean, &export.Rows); err != nil {
			return nil, fmt.Errorf("解析使用记录失败: %w", err)
		}
		return &export, nil
	}

	if err := json.Unmarshal(clean, &export); err != nil {
		return nil, fmt.Errorf("解析导出文件失败: %w", err)
	}
	if export.Error != "" {
		if strings.EqualFold(export.Error, bridgeNoPermission) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("原生桥返回错误: %s", export.Error)
	}
	return &export, nil
}

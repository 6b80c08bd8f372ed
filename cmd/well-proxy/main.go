package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yuqie6/WellMirror/internal/pkg/buildinfo"
	"github.com/yuqie6/WellMirror/internal/pkg/config"
	"github.com/yuqie6/WellMirror/internal/proxy"
)

func main() {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "well-proxy",
		Short:   "日报评语代理：校验必填字段后原样转发到 AI 服务",
		Version: buildinfo.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgFile)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		return err
	}
	logCloser, _ := config.SetupLogger(config.LoggerOptions{
		Level:     cfg.App.LogLevel,
		Path:      cfg.App.LogPath,
		Component: "well-proxy",
	})
	if logCloser != nil {
		defer logCloser.Close()
	}

	pcfg, err := proxy.FromAppConfig(cfg)
	if err != nil {
		slog.Error("解析代理配置失败", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := proxy.NewServer(pcfg).ListenAndServe(ctx); err != nil {
		slog.Error("代理异常退出", "error", err)
		return err
	}
	slog.Info("代理已退出")
	return nil
}

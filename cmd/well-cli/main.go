package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuqie6/WellMirror/internal/bootstrap"
	"github.com/yuqie6/WellMirror/internal/pkg/buildinfo"
)

var (
	cfgFile string
	core    *bootstrap.Core
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "well",
		Short:   "WellMirror - 数字健康评分与 AI 打卡反馈",
		Long:    `WellMirror 根据手机使用数据计算每日健康分，结合打卡向 AI 服务请求评语与建议。`,
		Version: buildinfo.Version,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				_ = core.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	// 添加子命令
	rootCmd.AddCommand(onboardCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(checkinCmd())
	rootCmd.AddCommand(reportsCmd())
	rootCmd.AddCommand(trendCmd())
	rootCmd.AddCommand(usageCmd())
	rootCmd.AddCommand(stateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(aiTestCmd())
	rootCmd.AddCommand(validateReportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// mustCore 按需加载配置与数据库（ai-test 等命令不需要）
func mustCore() *bootstrap.Core {
	if core != nil {
		return core
	}
	c, err := bootstrap.NewCore(cfgFile)
	if err != nil {
		slog.Error("初始化失败", "error", err)
		os.Exit(1)
	}
	core = c
	return core
}

// fail 打印错误并以状态码 1 退出
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	if core != nil {
		_ = core.Close()
	}
	os.Exit(1)
}

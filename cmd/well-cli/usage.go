package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuqie6/WellMirror/internal/collector"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/service"
)

// usageCmd 使用数据
func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "导入或录入使用数据",
	}
	cmd.AddCommand(usageImportCmd(), usageSetCmd(), usageTopCmd())
	return cmd
}

func usageImportCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "导入原生桥导出的应用使用记录（JSON/JSONC）",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			export, err := collector.ReadUsageFile(args[0])
			if errors.Is(err, collector.ErrPermissionDenied) {
				fail("%v：请在系统设置中为 WellMirror 开启「使用情况访问权限」后重新导出", err)
			}
			if err != nil {
				fail("读取导出文件失败: %v", err)
			}
			if date != "" {
				export.Date = date
			}

			c := mustCore()
			snap, err := c.Services.Usage.Import(context.Background(), export)
			if errors.Is(err, service.ErrNotOnboarded) {
				fail("尚未完成引导设置，请先执行 well onboard")
			}
			if err != nil {
				fail("导入失败: %v", err)
			}

			fmt.Printf("✅ 已导入 %s 的 %d 条记录\n", snap.Date, len(export.Rows))
			fmt.Println(strings.Join(renderUsage(snap.Usage), "\n"))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "覆盖导出文件中的日期 (YYYY-MM-DD)")
	return cmd
}

func usageSetCmd() *cobra.Command {
	var (
		date  string
		usage model.UsageData
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "手动录入当日使用指标",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			if date == "" {
				date = c.Services.CheckIns.Today()
			}
			snap, err := c.Services.Usage.SetUsage(context.Background(), date, usage)
			if err != nil {
				fail("录入失败: %v", err)
			}
			fmt.Printf("✅ 已更新 %s 的使用数据\n", snap.Date)
			fmt.Println(strings.Join(renderUsage(snap.Usage), "\n"))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "日期 (YYYY-MM-DD)，默认今天")
	cmd.Flags().IntVar(&usage.TotalTime, "total", 0, "总使用时长（分钟）")
	cmd.Flags().IntVar(&usage.LateNightTime, "late-night", 0, "就寝后使用时长（分钟）")
	cmd.Flags().IntVar(&usage.LongSessions, "long-sessions", 0, "长时段次数")
	cmd.Flags().Float64Var(&usage.ShortFormRatio, "short-form", 0, "短视频占比 0-1")
	cmd.Flags().Float64Var(&usage.SNSRatio, "sns", 0, "社交占比 0-1")
	cmd.Flags().Float64Var(&usage.GameRatio, "game", 0, "游戏占比 0-1")

	return cmd
}

func usageTopCmd() *cobra.Command {
	var (
		date  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "查看当日使用时长最多的应用",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			if date == "" {
				date = c.Services.CheckIns.Today()
			}
			stats, err := c.Services.Usage.TopApps(context.Background(), date, limit)
			if err != nil {
				fail("读取应用统计失败: %v", err)
			}
			if len(stats) == 0 {
				fmt.Printf("📭 %s 没有应用使用记录\n", date)
				return
			}

			fmt.Printf("📱 %s 应用使用排行\n", date)
			fmt.Println("═══════════════════════════════════════")
			for i, s := range stats {
				name := s.AppName
				if name == "" {
					name = s.PackageName
				}
				fmt.Printf("  %2d. %-24s %4d 分钟  %s\n", i+1, name, s.UsageSeconds/60, dimStyle.Render(s.Category))
			}
			fmt.Println("═══════════════════════════════════════")
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "日期 (YYYY-MM-DD)，默认今天")
	cmd.Flags().IntVar(&limit, "limit", 10, "显示条数")
	return cmd
}

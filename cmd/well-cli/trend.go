package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuqie6/WellMirror/internal/service"
)

// trendCmd 近期趋势
func trendCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "查看近 7/30 天的得分趋势",
		Run: func(cmd *cobra.Command, args []string) {
			p, err := service.ParseTrendPeriod(period)
			if err != nil {
				fail("%v", err)
			}
			c := mustCore()
			report, err := c.Services.Trends.GetTrendReport(context.Background(), p)
			if err != nil {
				fail("获取趋势失败: %v", err)
			}

			fmt.Printf("📈 %s ~ %s 趋势\n", report.StartDate, report.EndDate)
			fmt.Println("═══════════════════════════════════════")
			fmt.Println(row("打卡天数", fmt.Sprintf("%d 天", report.CheckInDays)))
			if report.CheckInDays > 0 {
				fmt.Println(row("平均得分", fmt.Sprintf("%.1f 分", report.AvgScore)))
				fmt.Println(row("平均时长", fmt.Sprintf("%.0f 分钟", report.AvgScreenTime)))
				fmt.Println(row("最佳", fmt.Sprintf("%s  %s", report.BestDay.Date, renderScore(report.BestDay.Score))))
				fmt.Println(row("最差", fmt.Sprintf("%s  %s", report.WorstDay.Date, renderScore(report.WorstDay.Score))))
				fmt.Println()
				for _, t := range report.Categories {
					fmt.Println(row(categoryLabel(t.Category), fmt.Sprintf("%4.1f / 20  %s", t.Average, trendIcon(t.Status))))
				}
			}
			if len(report.Bottlenecks) > 0 {
				fmt.Println()
				for _, b := range report.Bottlenecks {
					fmt.Println("  ⚠️  " + b)
				}
			}
			fmt.Println("═══════════════════════════════════════")
		},
	}

	cmd.Flags().StringVar(&period, "period", string(service.TrendPeriod7Days), "周期：7d | 30d")
	return cmd
}

func trendIcon(status string) string {
	switch status {
	case service.TrendImproving:
		return "↑"
	case service.TrendDeclining:
		return "↓"
	default:
		return "→"
	}
}

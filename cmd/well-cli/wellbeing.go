package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/service"
)

// onboardCmd 引导设置
func onboardCmd() *cobra.Command {
	var (
		target   int
		bedtime  string
		patterns []string
	)

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "完成引导设置（目标使用时长、就寝时间、想减少的习惯）",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			ctx := context.Background()

			profile, err := c.Services.Profiles.CompleteOnboarding(ctx, model.OnboardingData{
				TargetScreenTime: target,
				TargetBedTime:    bedtime,
				Patterns:         patterns,
			})
			if errors.Is(err, service.ErrProfileExists) {
				fail("已完成过引导设置；如需重新开始请执行 well reset --yes")
			}
			if err != nil {
				fail("引导设置失败: %v", err)
			}
			if err := c.Services.State.SetOnboardingDone(ctx, true); err != nil {
				fail("保存引导状态失败: %v", err)
			}

			fmt.Println("✅ 引导设置完成")
			fmt.Println(renderProfile(profile))
		},
	}

	cmd.Flags().IntVar(&target, "target", 180, "每日目标使用时长（分钟）")
	cmd.Flags().StringVar(&bedtime, "bedtime", "23:30", "目标就寝时间 (HH:MM)")
	cmd.Flags().StringSliceVar(&patterns, "pattern", nil, "想减少的使用习惯，最多 2 项")

	return cmd
}

// scoreCmd 实时得分
func scoreCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "查看实时得分（不含打卡）",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			if date == "" {
				date = c.Services.CheckIns.Today()
			}
			res, err := c.Services.Profiles.CurrentScore(context.Background(), date)
			if errors.Is(err, service.ErrNotOnboarded) {
				fail("尚未完成引导设置，请先执行 well onboard")
			}
			if err != nil {
				fail("计算得分失败: %v", err)
			}
			fmt.Println(renderScoreCard(res))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "指定日期 (YYYY-MM-DD)，默认今天")
	return cmd
}

// checkinCmd 每日打卡
func checkinCmd() *cobra.Command {
	var (
		date         string
		mood         int
		goal         int
		rating       int
		memo         string
		important    int
		lowPriority  int
		overload     bool
		satisfaction int
		goalAchieved bool
		mobile       bool
	)

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "完成每日打卡并生成日报",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()

			checkIn := model.CheckInData{Mood: mood, GoalAchievement: goal, SelfRating: rating, Memo: memo}
			if mobile {
				checkIn = model.MobileCheckIn{Mood: mood, Satisfaction: satisfaction, GoalAchieved: goalAchieved, Memo: memo}.ToCheckIn()
			}

			fmt.Println("📝 正在生成日报...")
			report, err := c.Services.CheckIns.Complete(context.Background(), service.CompleteCheckInRequest{
				Date:    date,
				CheckIn: checkIn,
				Notifications: model.NotificationData{
					ImportantCount:   important,
					LowPriorityCount: lowPriority,
					HasOverload:      overload,
				},
			})
			switch {
			case errors.Is(err, service.ErrNotOnboarded):
				fail("尚未完成引导设置，请先执行 well onboard")
			case errors.Is(err, service.ErrReportExists):
				fail("今天已经打过卡了，可用 well reports show 查看日报")
			case errors.Is(err, service.ErrBackfill):
				fail("不能为最新日报之前的日期补打卡: %v", err)
			case err != nil:
				fail("打卡失败: %v", err)
			}

			fmt.Println(renderReport(report))
			if profile, err := c.Services.Profiles.Get(context.Background()); err == nil {
				fmt.Println(renderProfile(profile))
			}
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "打卡日期 (YYYY-MM-DD)，默认今天")
	cmd.Flags().IntVar(&mood, "mood", 3, "心情 1-5")
	cmd.Flags().IntVar(&goal, "goal", 3, "目标达成度 1-5")
	cmd.Flags().IntVar(&rating, "rating", 3, "自我评价 1-5")
	cmd.Flags().StringVar(&memo, "memo", "", "备注")
	cmd.Flags().IntVar(&important, "important", 0, "重要通知数")
	cmd.Flags().IntVar(&lowPriority, "low-priority", 0, "低优先级通知数")
	cmd.Flags().BoolVar(&overload, "overload", false, "通知过载")
	cmd.Flags().BoolVar(&mobile, "mobile", false, "使用移动端打卡形态（--satisfaction / --goal-achieved）")
	cmd.Flags().IntVar(&satisfaction, "satisfaction", 3, "满意度 1-5（移动端形态）")
	cmd.Flags().BoolVar(&goalAchieved, "goal-achieved", false, "是否达成目标（移动端形态）")

	return cmd
}

// reportsCmd 报告日志
func reportsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "查看日报列表",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			reports, err := c.Services.CheckIns.ListReports(context.Background(), limit)
			if err != nil {
				fail("读取日报失败: %v", err)
			}
			if len(reports) == 0 {
				fmt.Println("📚 还没有日报记录，先执行 well checkin")
				return
			}

			fmt.Println("📅 日报记录")
			fmt.Println("═══════════════════════════════════════")
			for _, r := range reports {
				fmt.Printf("  %s  %s  %s  %s\n", r.Date, service.MoodEmoji(r.CheckIn.Mood), renderScore(r.Score), dimStyle.Render(r.FeedbackSource))
			}
			fmt.Println("═══════════════════════════════════════")
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 30, "最多显示的条数（0 表示全部）")

	showCmd := &cobra.Command{
		Use:   "show <date>",
		Short: "查看某日日报",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			date := c.Services.CheckIns.Today()
			if len(args) == 1 {
				date = args[0]
			}
			report, err := c.Services.CheckIns.GetReport(context.Background(), date)
			if err != nil {
				fail("读取日报失败: %v", err)
			}
			if report == nil {
				fail("%s 没有日报", date)
			}
			fmt.Println(renderReport(report))
		},
	}
	cmd.AddCommand(showCmd)

	return cmd
}

// exportData 与网页端本地存储键保持一致
type exportData struct {
	Profile    *model.UserProfile `json:"digitalWellbeingProfile"`
	Reports    any                `json:"digitalWellbeingReports"`
	TodayUsage *model.UsageData   `json:"digitalWellbeingTodayUsage"`
}

// exportCmd 导出档案、日报与今日使用数据
func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出全部数据为 JSON",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			ctx := context.Background()

			var data exportData
			profile, err := c.Services.Profiles.Get(ctx)
			if err != nil && !errors.Is(err, service.ErrNotOnboarded) {
				fail("读取档案失败: %v", err)
			}
			data.Profile = profile

			reports, err := c.Services.CheckIns.ListReports(ctx, 0)
			if err != nil {
				fail("读取日报失败: %v", err)
			}
			data.Reports = reports

			snap, err := c.Repos.Usage.GetSnapshot(ctx, c.Services.CheckIns.Today())
			if err != nil {
				fail("读取使用数据失败: %v", err)
			}
			if snap != nil {
				data.TodayUsage = &snap.Usage
			}

			b, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				fail("序列化失败: %v", err)
			}
			if out == "" {
				fmt.Println(string(b))
				return
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				fail("写入文件失败: %v", err)
			}
			fmt.Printf("✅ 已导出到 %s\n", out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "输出文件，默认打印到标准输出")
	return cmd
}

// resetCmd 清空所有数据
func resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "清空档案、日报、使用数据与长期记忆",
		Run: func(cmd *cobra.Command, args []string) {
			if !yes {
				fail("该操作不可恢复，请加上 --yes 确认")
			}
			c := mustCore()
			ctx := context.Background()
			if err := c.Services.Profiles.Reset(ctx); err != nil {
				fail("重置失败: %v", err)
			}
			if err := c.Services.State.SetOnboardingDone(ctx, false); err != nil {
				fail("重置引导状态失败: %v", err)
			}
			fmt.Println("✅ 已清空所有数据")
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "确认清空")
	return cmd
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yuqie6/WellMirror/internal/ai"
	"github.com/yuqie6/WellMirror/internal/pkg/config"
)

// aiTestOptions ai-test 参数
type aiTestOptions struct {
	input          string
	server         string
	endpoint       string
	reportEndpoint string
	mode           string
	outDir         string
	timeout        time.Duration
}

// aiTestCmd 对 AI 服务执行三步打卡对话并保存每一步输出
func aiTestCmd() *cobra.Command {
	opts := &aiTestOptions{}

	cmd := &cobra.Command{
		Use:   "ai-test",
		Short: "驱动 AI 打卡对话（chain | coverage | report）并保存输出",
		Run: func(cmd *cobra.Command, args []string) {
			applyAIConfig(cmd, opts)
			if err := runAITest(context.Background(), opts); err != nil {
				fail("%v", err)
			}
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Step1 输入文件（JSON，允许注释）")
	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8000", "AI 服务地址")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "/ai/checkin-question", "打卡问答路径")
	cmd.Flags().StringVar(&opts.reportEndpoint, "reportEndpoint", "/ai/daily-report", "日报路径")
	cmd.Flags().StringVar(&opts.mode, "mode", ai.ModeChain, "模式：chain | coverage | report")
	cmd.Flags().StringVar(&opts.outDir, "outDir", "reviews", "输出目录")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "单次请求超时")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// applyAIConfig 未显式指定的参数取配置文件中的值（配置不可用时保留默认）
func applyAIConfig(cmd *cobra.Command, opts *aiTestOptions) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Debug("读取配置失败，使用命令行默认值", "error", err)
		return
	}
	flags := cmd.Flags()
	if !flags.Changed("server") && cfg.AI.ServerURL != "" {
		opts.server = cfg.AI.ServerURL
	}
	if !flags.Changed("endpoint") && cfg.AI.CheckinEndpoint != "" {
		opts.endpoint = cfg.AI.CheckinEndpoint
	}
	if !flags.Changed("reportEndpoint") && cfg.AI.ReportEndpoint != "" {
		opts.reportEndpoint = cfg.AI.ReportEndpoint
	}
	if !flags.Changed("timeout") {
		opts.timeout = cfg.AITimeout()
	}
}

func runAITest(ctx context.Context, opts *aiTestOptions) error {
	mode, err := ai.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	input, err := ai.LoadInput(opts.input)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	slog.Info("开始 AI 对话测试", "run_id", runID, "mode", mode, "server", opts.server, "input", opts.input)

	client := ai.NewClient(&ai.ClientConfig{BaseURL: opts.server, Timeout: opts.timeout})
	conv := ai.NewConversation(client, &ai.ConversationConfig{
		CheckinEndpoint: opts.endpoint,
		ReportEndpoint:  opts.reportEndpoint,
		Observer:        outputWriter(opts.outDir, opts.input),
	})

	start := time.Now()
	switch mode {
	case ai.ModeCoverage:
		_, err = conv.RunCoverage(ctx, input)
	default:
		_, err = conv.RunChain(ctx, input, mode == ai.ModeReport)
	}

	var verr *ai.ReportValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintf(os.Stderr, "❌ %v\n", verr)
		return fmt.Errorf("日报未通过校验")
	case err != nil:
		return err
	}

	if mode == ai.ModeReport {
		fmt.Fprintln(os.Stderr, "✅ 日报校验通过")
	}
	slog.Info("AI 对话测试完成", "run_id", runID, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// outputWriter 每步输出打印到标准输出并写入 <outDir>/<base>_<name>.json
// 写入失败时返回错误，对话随之终止。
func outputWriter(outDir, inputPath string) ai.StepObserver {
	return func(name string, output any) error {
		pretty, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("序列化输出失败: %w", err)
		}
		fmt.Printf("=== %s ===\n%s\n", sectionTitle(name), pretty)

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
		path := outputPath(outDir, inputPath, name)
		if err := os.WriteFile(path, append(pretty, '\n'), 0o644); err != nil {
			return fmt.Errorf("写入输出文件失败: %w", err)
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		fmt.Fprintf(os.Stderr, "Saved: %s\n", path)
		return nil
	}
}

// outputPath <outDir>/<输入文件名去掉 .json>_<name>.json
func outputPath(outDir, inputPath, name string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), ".json")
	return filepath.Join(outDir, base+"_"+name+".json")
}

// sectionTitle step1_output → STEP1 OUTPUT，step2_selected_x → STEP2 SELECTED x
func sectionTitle(name string) string {
	if v, ok := strings.CutPrefix(name, "step2_selected_"); ok {
		return "STEP2 SELECTED " + v
	}
	return strings.ToUpper(strings.ReplaceAll(name, "_", " "))
}

// validateReportCmd 离线校验日报 JSON 文件
func validateReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-report <file>",
		Short: "校验日报 JSON 的结构与长度约束",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fail("读取文件失败: %v", err)
			}
			report, err := ai.DecodeJSON(data)
			if err != nil {
				fail("解析 JSON 失败: %v", err)
			}
			if err := ai.ValidateReport(report); err != nil {
				fail("%v", err)
			}
			fmt.Println("✅ 日报校验通过")
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// stateCmd 登录与引导状态
func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "查看或修改登录/引导状态",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			st := c.Services.State

			fmt.Println("🔐 应用状态")
			fmt.Println(row("已登录", yesNo(st.IsAuthed())))
			fmt.Println(row("已完成引导", yesNo(st.OnboardingDone())))
		},
	}

	var token string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "保存登录 token",
		Run: func(cmd *cobra.Command, args []string) {
			if token == "" {
				fail("请通过 --token 指定 token")
			}
			c := mustCore()
			if err := c.Services.State.SetToken(context.Background(), token); err != nil {
				fail("保存 token 失败: %v", err)
			}
			fmt.Println("✅ 已登录")
		},
	}
	loginCmd.Flags().StringVar(&token, "token", "", "登录 token")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "移除 token 并重置引导标记",
		Run: func(cmd *cobra.Command, args []string) {
			c := mustCore()
			if err := c.Services.State.Logout(context.Background()); err != nil {
				fail("退出登录失败: %v", err)
			}
			fmt.Println("👋 已退出登录")
		},
	}

	cmd.AddCommand(loginCmd, logoutCmd)
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}

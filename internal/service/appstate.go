package service

import (
	"context"
	"fmt"
	"sync"
)

// 本地存储键
const (
	KeyAuthToken      = "auth.token"
	KeyOnboardingDone = "auth.onboardingDone"
)

// AppState 登录与引导状态，显式构造并向下传递
// 每个操作先写存储，成功后才更新内存状态。
type AppState struct {
	kv KVRepository

	mu             sync.RWMutex
	token          string
	onboardingDone bool
}

// NewAppState 创建应用状态（需调用 Hydrate 加载）
func NewAppState(kv KVRepository) *AppState {
	return &AppState{kv: kv}
}

// Hydrate 从存储加载状态
func (s *AppState) Hydrate(ctx context.Context) error {
	token, _, err := s.kv.Get(ctx, KeyAuthToken)
	if err != nil {
		return fmt.Errorf("加载 token 失败: %w", err)
	}
	onboard, _, err := s.kv.Get(ctx, KeyOnboardingDone)
	if err != nil {
		return fmt.Errorf("加载引导状态失败: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.onboardingDone = onboard == "1"
	s.mu.Unlock()
	return nil
}

// SetToken 保存 token；空字符串表示移除
func (s *AppState) SetToken(ctx context.Context, token string) error {
	var err error
	if token == "" {
		err = s.kv.Delete(ctx, KeyAuthToken)
	} else {
		err = s.kv.Set(ctx, KeyAuthToken, token)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// SetOnboardingDone 保存引导完成标记（"1"/"0"）
func (s *AppState) SetOnboardingDone(ctx context.Context, done bool) error {
	v := "0"
	if done {
		v = "1"
	}
	if err := s.kv.Set(ctx, KeyOnboardingDone, v); err != nil {
		return err
	}

	s.mu.Lock()
	s.onboardingDone = done
	s.mu.Unlock()
	return nil
}

// Logout 移除 token 并重置引导标记
func (s *AppState) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyAuthToken); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyOnboardingDone, "0"); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.onboardingDone = false
	s.mu.Unlock()
	return nil
}

// Token 当前 token
func (s *AppState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// OnboardingDone 是否完成引导
func (s *AppState) OnboardingDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onboardingDone
}

// IsAuthed 是否已登录
func (s *AppState) IsAuthed() bool {
	return s.Token() != ""
}

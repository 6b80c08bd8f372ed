package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/pkg/config"
	"github.com/yuqie6/WellMirror/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.App.Timezone = "UTC"
	cfg.Storage.DBPath = filepath.Join(dir, "well.db")
	cfg.Storage.MemoryPath = filepath.Join(dir, "memory")
	cfg.AI.ServerURL = "http://127.0.0.1:1"
	cfg.AI.ProxyURL = "http://127.0.0.1:1"
	cfg.AI.TimeoutSec = 1
	cfg.AI.UserID = "tester"
	return cfg
}

func TestNewCoreWithConfigWiresServices(t *testing.T) {
	core, err := NewCoreWithConfig(testConfig(t))
	if err != nil {
		t.Fatalf("NewCoreWithConfig: %v", err)
	}
	defer core.Close()

	if core.DB.SafeMode {
		t.Fatalf("fresh database should not be in safe mode: %s", core.DB.MigrationError)
	}
	if err := core.RequireWritable(); err != nil {
		t.Fatalf("RequireWritable: %v", err)
	}
	if core.Services.Memory == nil || core.Services.CheckIns == nil || core.Services.Usage == nil {
		t.Fatalf("services not wired: %+v", core.Services)
	}

	ctx := context.Background()
	if _, err := core.Services.Profiles.CompleteOnboarding(ctx, model.OnboardingData{TargetScreenTime: 120, TargetBedTime: "23:00"}); err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}

	// AI 代理不可达时回退本地评语
	report, err := core.Services.CheckIns.Complete(ctx, serviceRequest("2025-03-01"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if report.FeedbackSource != "local" {
		t.Fatalf("FeedbackSource=%q, want local", report.FeedbackSource)
	}
	if core.Services.Memory.Count() != 1 {
		t.Fatalf("memory count=%d, want 1", core.Services.Memory.Count())
	}
}

func serviceRequest(date string) service.CompleteCheckInRequest {
	return service.CompleteCheckInRequest{
		Date:    date,
		CheckIn: model.CheckInData{Mood: 4, GoalAchievement: 4, SelfRating: 4},
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/WellMirror/internal/collector"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/repository"
	"github.com/yuqie6/WellMirror/internal/schema"
	"github.com/yuqie6/WellMirror/internal/testutil"
)

// ===== Mock Implementations =====

type fakeImportSource struct {
	events  chan *collector.UsageImport
	started bool
	stopped bool
}

func (f *fakeImportSource) Start(ctx context.Context) error {
	f.started = true
	return nil
}

func (f *fakeImportSource) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeImportSource) Events() <-chan *collector.UsageImport {
	return f.events
}

func TestUsageImportServiceConsumesEvents(t *testing.T) {
	db := testutil.OpenTestDB(t)
	profileRepo := repository.NewProfileRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	ctx := context.Background()

	p := model.NewUserProfile(model.OnboardingData{TargetScreenTime: 60, TargetBedTime: "23:00"})
	if err := profileRepo.Create(ctx, schema.NewProfileRecord(p)); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	events := &fakePublisher{}
	usage := NewUsageService(profileRepo, usageRepo, events, time.UTC)
	src := &fakeImportSource{events: make(chan *collector.UsageImport, 4)}
	svc := NewUsageImportService(src, usage)

	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// 权限错误与解析错误只记录日志，不影响后续导入
	src.events <- &collector.UsageImport{Path: "denied.json", Err: collector.ErrPermissionDenied}
	src.events <- &collector.UsageImport{Path: "ok.json", Export: &model.UsageExport{
		Date: "2025-03-02",
		Rows: []model.UsageRow{{PackageName: "com.supercell.clashroyale", UsageTime: 600}},
	}}
	close(src.events)

	deadline := time.Now().Add(5 * time.Second)
	for {
		snap, err := usageRepo.GetSnapshot(ctx, "2025-03-02")
		if err != nil {
			t.Fatalf("GetSnapshot: %v", err)
		}
		if snap != nil {
			if snap.Usage.TotalTime != 10 || snap.Usage.GameRatio != 1 {
				t.Fatalf("snapshot usage=%+v", snap.Usage)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot not imported")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !src.started || !src.stopped {
		t.Fatalf("source lifecycle started=%v stopped=%v", src.started, src.stopped)
	}
}

package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseUsageExport(t *testing.T) {
	t.Parallel()

	rows, err := ParseUsageExport([]byte(`[
		// 数组形式
		{"packageName":"com.kakao.talk","usageTime":120,"firstTimeStamp":1,"lastTimeStamp":2},
	]`))
	if err != nil {
		t.Fatalf("array form error: %v", err)
	}
	if len(rows.Rows) != 1 || rows.Rows[0].UsageTime != 120 {
		t.Fatalf("rows=%+v", rows.Rows)
	}

	obj, err := ParseUsageExport([]byte(`{"date":"2025-03-01","unlockCount":12,"rows":[{"packageName":"a","usageTime":1}]}`))
	if err != nil {
		t.Fatalf("object form error: %v", err)
	}
	if obj.Date != "2025-03-01" || obj.UnlockCount != 12 || len(obj.Rows) != 1 {
		t.Fatalf("export=%+v", obj)
	}

	if _, err := ParseUsageExport([]byte(`{"error":"NO_PERMISSION"}`)); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err=%v, want ErrPermissionDenied", err)
	}
	if _, err := ParseUsageExport([]byte(`{"error":"BRIDGE_DOWN"}`)); err == nil || errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("other bridge errors should not map to permission: %v", err)
	}
	if _, err := ParseUsageExport([]byte("  ")); err == nil {
		t.Fatalf("empty content accepted")
	}
}

func TestUsageImportWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewUsageImportWatcher(&UsageImportConfig{Dir: dir, Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewUsageImportWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}
	path := filepath.Join(dir, "today.json")
	if err := os.WriteFile(path, []byte(`[{"packageName":"com.kakao.talk","usageTime":600}]`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	select {
	case evt := <-w.Events():
		if evt.Err != nil {
			t.Fatalf("import error: %v", evt.Err)
		}
		if filepath.Base(evt.Path) != "today.json" || len(evt.Export.Rows) != 1 {
			t.Fatalf("event=%+v", evt)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no import event")
	}
}

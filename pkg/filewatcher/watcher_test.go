package filewatcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"exam_review_backend/pkg/filewatcher"
	"exam_review_backend/pkg/logger"

	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

func startWatcher(t *testing.T, dataFile string) (*atomic.Int32, chan struct{}) {
	t.Helper()

	var fires atomic.Int32
	changed := make(chan struct{}, 8)
	go filewatcher.Watch(dataFile, func() {
		fires.Add(1)
		changed <- struct{}{}
	})

	// 等监视器完成目录注册
	time.Sleep(300 * time.Millisecond)
	return &fires, changed
}

func waitForChange(t *testing.T, changed chan struct{}) {
	t.Helper()
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called after external modification")
	}
}

func TestWatchCoalescesBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "quiz_progress.json")
	if err := os.WriteFile(dataFile, []byte(`{"quizAttempts":[],"questionAttempts":[]}`), 0644); err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	fires, changed := startWatcher(t, dataFile)

	// 一阵连续写入经过防抖只触发一次回调
	for i := 0; i < 5; i++ {
		doc := fmt.Sprintf(`{"quizAttempts":[],"questionAttempts":[],"rev":%d}`, i)
		if err := os.WriteFile(dataFile, []byte(doc), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	waitForChange(t, changed)

	time.Sleep(1500 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Fatalf("burst of writes must coalesce into one callback, got %d", got)
	}
}

func TestWatchDetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "quiz_progress.json")
	if err := os.WriteFile(dataFile, []byte(`{"quizAttempts":[],"questionAttempts":[]}`), 0644); err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	_, changed := startWatcher(t, dataFile)

	// 写临时文件再 rename 覆盖，备份恢复脚本的典型做法
	tmp := filepath.Join(dir, "quiz_progress.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"quizAttempts":[],"questionAttempts":[],"restored":true}`), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.Rename(tmp, dataFile); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	waitForChange(t, changed)
}

func TestWatchIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "quiz_progress.json")
	if err := os.WriteFile(dataFile, []byte(`{"quizAttempts":[],"questionAttempts":[]}`), 0644); err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	fires, _ := startWatcher(t, dataFile)

	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("unrelated"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)
	if got := fires.Load(); got != 0 {
		t.Fatalf("writes to other files in the directory must be ignored, got %d callbacks", got)
	}
}

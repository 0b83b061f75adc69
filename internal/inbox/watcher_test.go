package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/halvard/ansuz/internal/imageservice"
)

type fakePipeline struct {
	mu       sync.Mutex
	requests []imageservice.PasteRequest
}

func (f *fakePipeline) UploadNew(_ context.Context, req imageservice.PasteRequest) (*imageservice.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return &imageservice.UploadResult{FileName: req.OriginalName, URL: "https://cdn.example.com/" + req.OriginalName}, nil
}

func (f *fakePipeline) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatch_UploadsDroppedImage(t *testing.T) {
	vaultDir := t.TempDir()
	svc := &fakePipeline{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, svc, vaultDir, Config{Dir: "inbox", Note: "inbox.md", Mode: "template"}, testLogger())
		close(done)
	}()

	// Give the watcher time to create and watch the directory.
	eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		_, err := os.Stat(filepath.Join(vaultDir, "inbox"))
		return err == nil
	}, "inbox dir not created")

	dropped := filepath.Join(vaultDir, "inbox", "shot.png")
	if err := os.WriteFile(dropped, []byte("fake-png"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return svc.count() == 1
	}, "dropped image never reached the pipeline")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		_, err := os.Stat(dropped)
		return os.IsNotExist(err)
	}, "dropped image not removed after upload")

	req := svc.requests[0]
	if req.NotePath != "inbox.md" {
		t.Errorf("NotePath = %q, want inbox.md", req.NotePath)
	}
	if req.OriginalName != "shot.png" {
		t.Errorf("OriginalName = %q, want shot.png", req.OriginalName)
	}
	if string(req.Data) != "fake-png" {
		t.Errorf("Data = %q", req.Data)
	}
	if req.Mode != "template" {
		t.Errorf("Mode = %q, want template", req.Mode)
	}

	if _, err := os.Stat(filepath.Join(vaultDir, "inbox.md")); err != nil {
		t.Errorf("target note not created: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatch_IgnoresNonImages(t *testing.T) {
	vaultDir := t.TempDir()
	svc := &fakePipeline{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = Watch(ctx, svc, vaultDir, Config{Dir: "inbox", Note: "inbox.md"}, testLogger())
	}()

	eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		_, err := os.Stat(filepath.Join(vaultDir, "inbox"))
		return err == nil
	}, "inbox dir not created")

	if err := os.WriteFile(filepath.Join(vaultDir, "inbox", "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(1200 * time.Millisecond)
	if svc.count() != 0 {
		t.Errorf("non-image file reached the pipeline: %+v", svc.requests)
	}
}

func TestWatch_DisabledWithoutDir(t *testing.T) {
	if err := Watch(context.Background(), &fakePipeline{}, t.TempDir(), Config{}, testLogger()); err != nil {
		t.Fatalf("Watch with empty dir returned %v", err)
	}
}

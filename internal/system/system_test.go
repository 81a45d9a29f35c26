package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.yaml")
	recent := filepath.Join(dir, "recent.YAML")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, recent, other} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	os.Chtimes(old, past, past)
	future := time.Now().Add(time.Hour)
	os.Chtimes(other, future, future)

	got, err := FindLatest(dir, ".yaml", ".yml")
	if err != nil {
		t.Fatal(err)
	}
	if got != recent {
		t.Errorf("Expected %s, got %s", recent, got)
	}

	if _, err := FindLatest(dir, ".gif"); err == nil {
		t.Error("Expected error when nothing matches")
	}
}

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		listing string
		want    string
	}{
		{" V....D h264_nvenc  NVIDIA NVENC H.264 encoder", "h264_nvenc"},
		{" V....D h264_videotoolbox VideoToolbox H.264 Encoder\n V....D h264_nvenc", "h264_videotoolbox"},
		{" V....D libx264 libx264 H.264", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.listing); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}
}

func TestWorkersBounds(t *testing.T) {
	if got := Workers(2, 0, 100); got > 2 || got < 1 {
		t.Errorf("Expected at most 2 workers, got %d", got)
	}
	if got := Workers(0, 0, 1); got != 1 {
		t.Errorf("Expected 1 worker for a single job, got %d", got)
	}
	// A frame larger than any machine's memory still leaves one worker.
	if got := Workers(8, 1<<62, 10); got != 1 {
		t.Errorf("Expected memory bound to clamp to 1, got %d", got)
	}
}

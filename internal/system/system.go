package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// FindLatest returns the most recently modified file in dir whose extension
// matches one of exts (case-insensitive, with the leading dot).
func FindLatest(dir string, exts ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time
	for _, e := range entries {
		if e.IsDir() || !hasExt(e.Name(), exts) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, e.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files in %s", strings.Join(exts, "/"), dir)
	}
	return latestFile, nil
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

var (
	encoderOnce sync.Once
	encoderName string
)

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg offers one.
// Приоритеты: VideoToolbox (macOS), NVENC, затем программный libx264.
func GetBestH264Encoder() string {
	encoderOnce.Do(func() {
		encoderName = "libx264"
		out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			return
		}
		encoderName = pickEncoder(string(out))
	})
	return encoderName
}

func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// Workers sizes the render fan-out: no more than requested (all logical CPUs
// when requested <= 0), no more than jobs, and few enough that every worker
// can hold two frames of frameBytes in available memory.
func Workers(requested int, frameBytes uint64, jobs int) int {
	cpus, err := cpu.Counts(true)
	if err != nil || cpus < 1 {
		cpus = runtime.NumCPU()
	}
	n := cpus
	if requested > 0 && requested < n {
		n = requested
	}
	if jobs > 0 && jobs < n {
		n = jobs
	}
	if frameBytes > 0 {
		if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
			byMem := int(vm.Available / (2 * frameBytes))
			if byMem < n {
				n = byMem
			}
		}
	}
	return max(n, 1)
}

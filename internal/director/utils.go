package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/drillanim/internal/system"
)

// GenerateScenarioPath creates a timestamped scenario filename in dir.
func GenerateScenarioPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("drill_%s.yaml", timestamp))
}

// FindLatestScenario finds the most recently modified scenario file in dir.
func FindLatestScenario(dir string) (string, error) {
	path, err := system.FindLatest(dir, ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("no scenario files found: %w", err)
	}
	return path, nil
}

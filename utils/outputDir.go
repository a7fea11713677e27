package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const RunDateLayout = "2006-01-02"

func RunDirName(date time.Time) string {
	return "output_" + date.Format(RunDateLayout)
}

// RunOutputDir creates <base>/output_YYYY-MM-DD if needed and returns it.
// Re-running on the same date reuses the directory.
func RunOutputDir(base string, date time.Time) (string, error) {
	if base == "" {
		base = "."
	}
	dir := filepath.Join(base, RunDirName(date))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return dir, nil
}

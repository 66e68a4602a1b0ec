package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// sqlite sidecar files that belong to a database
var sidecars = []string{"-journal", "-wal", "-shm"}

// ArchiveCheckpoint moves the checkpoint database to an archive directory next
// to it with a timestamp and returns the new path
func ArchiveCheckpoint(dbPath string) (string, error) {
	// Check if checkpoint database exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("checkpoint database does not exist: %s", dbPath)
	}

	// Get parent directory and create archive path
	parentDir := filepath.Dir(dbPath)
	archiveDir := filepath.Join(parentDir, "archive")

	// Create archive directory if it doesn't exist
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(dbPath)
	name := strings.TrimSuffix(filepath.Base(dbPath), ext)

	// Generate timestamp
	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, timestamp, ext))

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, timestamp, ext))
	}

	if err := os.Rename(dbPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive checkpoint database: %w", err)
	}

	for _, suffix := range sidecars {
		if _, err := os.Stat(dbPath + suffix); err == nil {
			if err := os.Rename(dbPath+suffix, archivePath+suffix); err != nil {
				return "", fmt.Errorf("failed to archive %s: %w", dbPath+suffix, err)
			}
		}
	}

	return archivePath, nil
}

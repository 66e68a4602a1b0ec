package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestArchiveCheckpoint(t *testing.T) {
	// Create temp directory
	tmpDir := t.TempDir()

	// Create a checkpoint database and a journal next to it
	dbPath := filepath.Join(tmpDir, "run.db")
	if err := os.WriteFile(dbPath, []byte("sqlite"), 0644); err != nil {
		t.Fatalf("Failed to create database file: %v", err)
	}
	if err := os.WriteFile(dbPath+"-journal", []byte("journal"), 0644); err != nil {
		t.Fatalf("Failed to create journal file: %v", err)
	}

	archivedPath, err := ArchiveCheckpoint(dbPath)
	if err != nil {
		t.Fatalf("ArchiveCheckpoint failed: %v", err)
	}

	// Check that the database no longer exists
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("Checkpoint database still exists after archiving")
	}
	if _, err := os.Stat(dbPath + "-journal"); !os.IsNotExist(err) {
		t.Error("Journal still exists after archiving")
	}

	// Check that archive directory was created
	archiveDir := filepath.Join(tmpDir, "archive")
	if filepath.Dir(archivedPath) != archiveDir {
		t.Errorf("Archived to %s, expected directory %s", archivedPath, archiveDir)
	}

	// Verify the archived name keeps base and extension (run-YYYYMMDD-HHMMSS.db)
	archivedName := filepath.Base(archivedPath)
	if !strings.HasPrefix(archivedName, "run-") || !strings.HasSuffix(archivedName, ".db") {
		t.Errorf("Unexpected archive name: %s", archivedName)
	}

	data, err := os.ReadFile(archivedPath)
	if err != nil || string(data) != "sqlite" {
		t.Errorf("Archived database content mismatch: %q, %v", data, err)
	}
	if _, err := os.Stat(archivedPath + "-journal"); err != nil {
		t.Error("Journal not found in archive")
	}
}

func TestArchiveCheckpoint_NonExistent(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := ArchiveCheckpoint(filepath.Join(tmpDir, "missing.db"))
	if err == nil {
		t.Fatal("Expected error for non-existent database")
	}

	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestArchiveCheckpoint_MultipleArchives(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "run.db")

	// Archive twice to ensure unique names
	for i := 0; i < 2; i++ {
		if err := os.WriteFile(dbPath, []byte("sqlite"), 0644); err != nil {
			t.Fatalf("Failed to create database file: %v", err)
		}

		// Small delay to ensure different timestamps
		if i == 1 {
			time.Sleep(10 * time.Millisecond)
		}

		if _, err := ArchiveCheckpoint(dbPath); err != nil {
			t.Fatalf("ArchiveCheckpoint failed on iteration %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "archive"))
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}

	if entries[0].Name() == entries[1].Name() {
		t.Error("Archive names are not unique")
	}
}

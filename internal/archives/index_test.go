package archives

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/logging"
)

func newTestIndex(t *testing.T, dir string) *Index {
	t.Helper()
	logger, err := logging.NewLogger("error")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	return NewIndex(dir, nil, logger)
}

func TestIndexRescanFindsOnlyWimFiles(t *testing.T) {
	dir := t.TempDir()

	for name, content := range map[string]string{
		"base.wim":   "0123456789",
		"winpe.wim":  "abc",
		"readme.txt": "not an archive",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "backup.wim"), 0o755); err != nil {
		t.Fatal(err)
	}

	idx := newTestIndex(t, dir)
	if err := idx.rescan(); err != nil {
		t.Fatalf("rescan() error = %v", err)
	}

	archives := idx.List()
	if len(archives) != 2 {
		t.Fatalf("List() returned %d archives, want 2: %+v", len(archives), archives)
	}
	if archives[0].Name != "base.wim" || archives[1].Name != "winpe.wim" {
		t.Errorf("List() not sorted by name: %+v", archives)
	}
	if archives[0].SizeBytes != 10 {
		t.Errorf("List() size = %d, want 10", archives[0].SizeBytes)
	}
}

func TestIndexRescanMissingDirectory(t *testing.T) {
	idx := newTestIndex(t, filepath.Join(t.TempDir(), "does-not-exist"))
	if err := idx.rescan(); err == nil {
		t.Error("rescan() on a missing directory should fail")
	}
}

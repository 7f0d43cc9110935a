package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeAsset(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestAssetLibraryResolve(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "music/M12.mp3")
	writeAsset(t, root, "effects/E1b.mp3")

	lib, err := NewAssetLibrary(root, "/assets")
	if err != nil {
		t.Fatalf("NewAssetLibrary: %v", err)
	}
	defer lib.Close()

	url, err := lib.Resolve("music/M12.mp3")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if url != "/assets/music/M12.mp3" {
		t.Errorf("url = %q, want /assets/music/M12.mp3", url)
	}

	if _, err := lib.Resolve("music/M99.mp3"); !errors.Is(err, ErrAssetMissing) {
		t.Errorf("Resolve(missing) = %v, want ErrAssetMissing", err)
	}
}

func TestAssetLibraryRescanPicksUpNewFiles(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "music/M1.mp3")

	lib, err := NewAssetLibrary(root, "/assets")
	if err != nil {
		t.Fatalf("NewAssetLibrary: %v", err)
	}
	defer lib.Close()

	if _, err := lib.Resolve("effects/E5a.mp3"); err == nil {
		t.Fatal("asset resolved before it exists")
	}

	writeAsset(t, root, "effects/E5a.mp3")
	if err := lib.rescan(); err != nil {
		t.Fatalf("rescan: %v", err)
	}

	if _, err := lib.Resolve("effects/E5a.mp3"); err != nil {
		t.Errorf("Resolve after rescan: %v", err)
	}
}

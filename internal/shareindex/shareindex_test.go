package shareindex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIndexRootThenSearch(t *testing.T) {
	musicDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(musicDir, "album"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	trackPath := filepath.Join(musicDir, "album", "track one.mp3")
	if err := os.WriteFile(trackPath, []byte("fake mp3 bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	rf := RootFolder{Path: musicDir, Alias: "music"}
	if err := idx.IndexRoot(rf); err != nil {
		t.Fatalf("IndexRoot: %v", err)
	}

	public, private, err := idx.Search("track one")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(private) != 0 {
		t.Fatalf("expected no private results, got %d", len(private))
	}
	if len(public) != 1 {
		t.Fatalf("expected 1 public result, got %d: %+v", len(public), public)
	}
	if public[0].AliasPath != `music\album\track one.mp3` {
		t.Fatalf("AliasPath = %q", public[0].AliasPath)
	}
}

func TestIndexRootIndexesAliasAndFolderTerms(t *testing.T) {
	musicDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(musicDir, "jazz"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	trackPath := filepath.Join(musicDir, "jazz", "song.mp3")
	if err := os.WriteFile(trackPath, []byte("fake mp3 bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	rf := RootFolder{Path: musicDir, Alias: "collection"}
	if err := idx.IndexRoot(rf); err != nil {
		t.Fatalf("IndexRoot: %v", err)
	}

	// "song.mp3" alone carries neither "collection" nor "jazz"; both
	// only appear in the aliased path, so finding this file by either
	// term proves the full aliased path is what gets term-indexed.
	public, _, err := idx.Search("collection")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("expected alias term to find the file, got %d results", len(public))
	}

	public, _, err = idx.Search("jazz")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("expected subfolder term to find the file, got %d results", len(public))
	}
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	public, private, err := idx.Search("   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if public != nil || private != nil {
		t.Fatalf("expected nil results for empty query, got %v / %v", public, private)
	}
}

func TestReindexDeletesStaleFiles(t *testing.T) {
	musicDir := t.TempDir()
	keep := filepath.Join(musicDir, "keep.mp3")
	remove := filepath.Join(musicDir, "remove.mp3")
	os.WriteFile(keep, []byte("keep"), 0o644)
	os.WriteFile(remove, []byte("remove"), 0o644)

	dbPath := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	rf := RootFolder{Path: musicDir, Alias: "m"}
	if err := idx.IndexRoot(rf); err != nil {
		t.Fatalf("first IndexRoot: %v", err)
	}

	os.Remove(remove)

	if err := idx.IndexRoot(rf); err != nil {
		t.Fatalf("second IndexRoot: %v", err)
	}

	public, _, err := idx.Search("remove")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(public) != 0 {
		t.Fatalf("expected removed file to be purged from the index, got %+v", public)
	}

	public, _, err = idx.Search("keep")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("expected kept file to remain indexed, got %+v", public)
	}
}

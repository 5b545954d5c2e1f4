package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLocalImageStoreCopyAndDelete(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "capture.jpg")
	dst := filepath.Join(dir, "museum", "saved.jpg")

	if err := os.WriteFile(src, []byte("jpeg-bytes"), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	store := NewLocalImageStore()
	if err := store.Copy(src, dst); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	exists, err := store.Exists(dst)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Fatal("copied image does not exist")
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read copy: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("copy content = %q, want jpeg-bytes", data)
	}

	info, err := store.Info(dst)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Size != int64(len("jpeg-bytes")) {
		t.Errorf("Info size = %d, want %d", info.Size, len("jpeg-bytes"))
	}

	if err := store.Delete(dst); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	exists, _ = store.Exists(dst)
	if exists {
		t.Error("image still exists after delete")
	}

	// Deleting again is a no-op
	if err := store.Delete(dst); err != nil {
		t.Errorf("Delete of absent file failed: %v", err)
	}
}

func TestLocalImageStoreCopyMissingSource(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalImageStore()
	err := store.Copy(filepath.Join(dir, "nope.jpg"), filepath.Join(dir, "out.jpg"))
	if err == nil {
		t.Fatal("Copy of missing source should fail")
	}
}

package archive

import (
	"context"
	"testing"
)

func TestLocalFS_WriteReadExists(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	path := "documents/api_design/s1.md"
	if err := fs.Write(ctx, path, []byte("# doc")); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := fs.Read(ctx, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "# doc" {
		t.Errorf("unexpected content %q", data)
	}

	exists, err := fs.Exists(ctx, path)
	if err != nil || !exists {
		t.Errorf("expected existing path, got %v, %v", exists, err)
	}

	exists, err = fs.Exists(ctx, "documents/missing.md")
	if err != nil || exists {
		t.Errorf("expected missing path, got %v, %v", exists, err)
	}
}

func TestLocalFS_ListByPrefix(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	fs.Write(ctx, "documents/api_design/a.md", []byte("a"))
	fs.Write(ctx, "documents/api_design/b.md", []byte("b"))
	fs.Write(ctx, "documents/performance/c.md", []byte("c"))

	paths, err := fs.List(ctx, "documents/api_design")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 paths, got %v", paths)
	}
}

func TestLocalFS_ListMissingPrefix(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paths, err := fs.List(context.Background(), "nothing/here")
	if err != nil {
		t.Fatalf("list on a missing prefix must not fail: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths, got %v", paths)
	}
}

func TestLocalFS_Delete(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	fs.Write(ctx, "doc.md", []byte("x"))
	if err := fs.Delete(ctx, "doc.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	exists, _ := fs.Exists(ctx, "doc.md")
	if exists {
		t.Error("deleted path must not exist")
	}
}

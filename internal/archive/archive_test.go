package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocal_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	l, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := l.Save(context.Background(), "../news_20240501-090000.json", "application/json", []byte("[]"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Dir(path) != l.dir {
		t.Errorf("file escaped archive dir: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "[]" {
		t.Errorf("read back %q, %v", data, err)
	}
}

func TestLocal_SaveSameNameTwice(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	first, err := l.Save(ctx, "news_20240501-090000.csv", "text/csv", []byte("one"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := l.Save(ctx, "news_20240501-090000.csv", "text/csv", []byte("two"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatalf("second export overwrote the first: %s", first)
	}
	for path, want := range map[string]string{first: "one", second: "two"} {
		base := filepath.Base(path)
		if !strings.HasPrefix(base, "news_20240501-090000-") || !strings.HasSuffix(base, ".csv") {
			t.Errorf("unexpected archive name %s", base)
		}
		if data, _ := os.ReadFile(path); string(data) != want {
			t.Errorf("%s = %q, want %q", base, data, want)
		}
	}
}

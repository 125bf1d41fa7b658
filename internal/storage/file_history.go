package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileHistory keeps runs in a JSON file, newest first, capped at limit.
type FileHistory struct {
	filePath string
	limit    int
	runs     []Run
	mu       sync.RWMutex
}

// NewFileHistory loads an existing file when present.
func NewFileHistory(filePath string, limit int) (*FileHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	fh := &FileHistory{filePath: filePath, limit: limit}
	if err := fh.load(); err != nil {
		return nil, err
	}
	return fh, nil
}

func (fh *FileHistory) load() error {
	data, err := os.ReadFile(fh.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var runs []Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].At.After(runs[j].At) })
	if len(runs) > fh.limit {
		runs = runs[:fh.limit]
	}
	fh.runs = runs
	return nil
}

func (fh *FileHistory) Record(_ context.Context, run Run) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	fh.runs = append([]Run{run}, fh.runs...)
	if len(fh.runs) > fh.limit {
		fh.runs = fh.runs[:fh.limit]
	}
	return fh.saveLocked()
}

// saveLocked writes through a temp file so a crash never leaves half a file.
func (fh *FileHistory) saveLocked() error {
	data, err := json.MarshalIndent(fh.runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if dir := filepath.Dir(fh.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create history dir: %w", err)
		}
	}
	tmp := fh.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return os.Rename(tmp, fh.filePath)
}

func (fh *FileHistory) Recent(_ context.Context, limit int) ([]Run, error) {
	fh.mu.RLock()
	defer fh.mu.RUnlock()

	if limit <= 0 || limit > len(fh.runs) {
		limit = len(fh.runs)
	}
	out := make([]Run, limit)
	copy(out, fh.runs[:limit])
	return out, nil
}

func (fh *FileHistory) Stats(_ context.Context) (map[string]int, error) {
	fh.mu.RLock()
	defer fh.mu.RUnlock()

	stats := map[string]int{"total_runs": len(fh.runs)}
	for _, r := range fh.runs {
		stats["items_returned"] += r.Returned
		for _, it := range r.Top {
			if it.Source != "" {
				stats["source_"+it.Source]++
			}
			if it.Category != "" {
				stats["category_"+it.Category]++
			}
		}
	}
	return stats, nil
}

func (fh *FileHistory) Close() error { return nil }

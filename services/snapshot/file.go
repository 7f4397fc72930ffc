package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileDocument is the on-disk shape: all targets in one JSON document plus a
// file-level timestamp, matching what earlier versions of the monitor wrote.
type fileDocument struct {
	Searches  map[string]Snapshot `json:"searches"`
	LastCheck time.Time           `json:"last_check"`
}

// FileStore persists snapshots as a single JSON file. Writes go through a
// temp file and an atomic rename so a crash mid-write leaves the previous
// snapshot intact.
type FileStore struct {
	path string

	mu    sync.Mutex
	doc   fileDocument
	dirty bool
}

// NewFileStore opens (or initializes) a file store at path. A missing or
// unreadable file yields an empty store; the monitor must be able to start
// from nothing.
func NewFileStore(path string) *FileStore {
	store := &FileStore{
		path: path,
		doc:  fileDocument{Searches: make(map[string]Snapshot)},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return store
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return store
	}
	if doc.Searches == nil {
		doc.Searches = make(map[string]Snapshot)
	}
	store.doc = doc

	return store
}

// Load returns the snapshot for key, or a zero snapshot when absent.
func (f *FileStore) Load(key string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.doc.Searches[key], nil
}

// Save stages the snapshot in memory; the document is written to disk by
// Flush, once per run.
func (f *FileStore) Save(key string, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.doc.Searches[key] = snap
	f.dirty = true
	return nil
}

// Close flushes any staged snapshots before releasing the store.
func (f *FileStore) Close() error {
	return f.Flush()
}

// Flush writes staged snapshots with an atomic replace of the file.
func (f *FileStore) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.dirty {
		return nil
	}

	f.doc.LastCheck = time.Now()

	data, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot document: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	f.dirty = false
	return nil
}

// Package settings provides storage for keycheck user settings.
//
// Settings are kept behind the KV interface so callers and tests never
// depend on a concrete storage mechanism. The default FileKV stores a flat
// JSON object in the XDG data directory:
//
//	$XDG_DATA_HOME/keycheck/settings.json  (default: ~/.local/share/keycheck/)
//
// File permissions are 0600 (owner read/write only).
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	dataDirName = "keycheck"
	fileName    = "settings.json"
)

// KV is a string key-value store.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// DataDir returns the keycheck data directory.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// FilePath returns the default settings file path.
func FilePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// ---------------------------------------------------------------------------
// FileKV
// ---------------------------------------------------------------------------

// FileKV is a KV persisted as a JSON object. Every Set or Delete rewrites
// the file.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV returns a store backed by path.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// OpenDefault returns a store backed by the default settings file.
func OpenDefault() (*FileKV, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	return NewFileKV(path), nil
}

// Path returns the backing file path.
func (s *FileKV) Path() string {
	return s.path
}

// load reads the store. A missing or invalid file reads as empty.
func (s *FileKV) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func (s *FileKV) save(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

func (s *FileKV) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.load()[key]
	return v, ok
}

func (s *FileKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.load()
	m[key] = value
	return s.save(m)
}

func (s *FileKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.load()
	if _, ok := m[key]; !ok {
		return nil // Nothing to delete
	}
	delete(m, key)
	return s.save(m)
}

// ---------------------------------------------------------------------------
// MemoryKV
// ---------------------------------------------------------------------------

// MemoryKV is an in-memory KV.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (s *MemoryKV) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

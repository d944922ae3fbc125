package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage persists the flat settings map. The Store is its sole
// reader and writer.
type Storage interface {
	Load() (map[string]string, error)
	Save(map[string]string) error
}

const (
	appName        = "murmur"
	configFileName = "config.json"
)

// FileStorage keeps the settings map as a JSON object on disk.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func (f *FileStorage) Load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func (f *FileStorage) Save(m map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// MemStorage is an in-memory Storage for tests.
type MemStorage struct {
	mu    sync.Mutex
	m     map[string]string
	saves int
}

func NewMemStorage(initial map[string]string) *MemStorage {
	m := map[string]string{}
	for k, v := range initial {
		m[k] = v
	}
	return &MemStorage{m: m}
}

func (s *MemStorage) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for k, v := range s.m {
		out[k] = v
	}
	return out, nil
}

func (s *MemStorage) Save(m map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = map[string]string{}
	for k, v := range m {
		s.m[k] = v
	}
	s.saves++
	return nil
}

func (s *MemStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

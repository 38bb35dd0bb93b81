package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/blackhole-core/agentmesh/types"
)

// Store is the persistence contract the registry requires. Implementations
// only need load/save/delete; the registry handles everything else.
type Store interface {
	Load(ctx context.Context) ([]types.AgentConfig, error)
	Save(ctx context.Context, cfg types.AgentConfig) error
	Delete(ctx context.Context, id string) error
}

// FileStore persists agent configs as a single JSON document, keyed by agent
// id. When the file does not exist yet it is seeded with the default
// templates so a fresh install has working examples to edit.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a JSON file store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads all configs. A missing file seeds and returns the defaults.
func (s *FileStore) Load(_ context.Context) ([]types.AgentConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		defaults := DefaultTemplates()
		if writeErr := s.writeAll(defaults); writeErr != nil {
			return nil, writeErr
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var byID map[string]types.AgentConfig
	if err := json.Unmarshal(data, &byID); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]types.AgentConfig, 0, len(ids))
	for _, id := range ids {
		cfg := byID[id]
		cfg.ID = id
		out = append(out, cfg)
	}
	return out, nil
}

// Save writes one config, rewriting the whole document.
func (s *FileStore) Save(ctx context.Context, cfg types.AgentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, err := s.readAll()
	if err != nil {
		return err
	}
	byID[cfg.ID] = cfg

	configs := make([]types.AgentConfig, 0, len(byID))
	for _, c := range byID {
		configs = append(configs, c)
	}
	return s.writeAll(configs)
}

// Delete removes one config from the document.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, err := s.readAll()
	if err != nil {
		return err
	}
	delete(byID, id)

	configs := make([]types.AgentConfig, 0, len(byID))
	for _, c := range byID {
		configs = append(configs, c)
	}
	return s.writeAll(configs)
}

func (s *FileStore) readAll() (map[string]types.AgentConfig, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]types.AgentConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var byID map[string]types.AgentConfig
	if err := json.Unmarshal(data, &byID); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return byID, nil
}

func (s *FileStore) writeAll(configs []types.AgentConfig) error {
	byID := make(map[string]types.AgentConfig, len(configs))
	for _, cfg := range configs {
		byID[cfg.ID] = cfg
	}
	data, err := json.MarshalIndent(byID, "", "  ")
	if err != nil {
		return fmt.Errorf("encode agent configs: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}

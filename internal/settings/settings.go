package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"crypto-volume-toolkit/internal/domain"
)

// Store persists the per-user API keys collected by the setup wizard.
type Store interface {
	Load(ctx context.Context, uid string) (domain.APIKeys, error)
	Save(ctx context.Context, uid string, keys domain.APIKeys) error
	Reset(ctx context.Context, uid string) error
}

// FileStore keeps every user's keys in a single JSON document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) readAll() (map[string]domain.APIKeys, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]domain.APIKeys{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	all := map[string]domain.APIKeys{}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return all, nil
}

// writeAll replaces the settings file through a temp file and rename.
func (s *FileStore) writeAll(all map[string]domain.APIKeys) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Load returns the user's keys. Unknown users get the placeholder set.
func (s *FileStore) Load(_ context.Context, uid string) (domain.APIKeys, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readAll()
	if err != nil {
		return domain.PlaceholderKeys(), err
	}
	keys, ok := all[uid]
	if !ok {
		return domain.PlaceholderKeys(), nil
	}
	return keys.WithPlaceholders(), nil
}

// Save stores keys for uid; blank fields are saved as placeholders.
func (s *FileStore) Save(_ context.Context, uid string, keys domain.APIKeys) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readAll()
	if err != nil {
		return err
	}
	all[uid] = keys.WithPlaceholders()
	return s.writeAll(all)
}

func (s *FileStore) Reset(ctx context.Context, uid string) error {
	return s.Save(ctx, uid, domain.PlaceholderKeys())
}

// WithDefaults fills unusable fields of keys from the environment keys.
func WithDefaults(keys, env domain.APIKeys) domain.APIKeys {
	return keys.Merge(env)
}

// Resolver loads a user's keys and applies environment defaults.
type Resolver struct {
	store Store
	env   domain.APIKeys
}

func NewResolver(store Store, env domain.APIKeys) *Resolver {
	return &Resolver{store: store, env: env}
}

func (r *Resolver) Keys(ctx context.Context, uid string) (domain.APIKeys, error) {
	keys, err := r.store.Load(ctx, uid)
	if err != nil {
		return WithDefaults(domain.PlaceholderKeys(), r.env), err
	}
	return WithDefaults(keys, r.env), nil
}

func (r *Resolver) Store() Store { return r.store }

package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driven"
	"github.com/logship/logsh/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// Store is a JSON file backed configuration store.
// There is no locking between processes; the last Save wins.
type Store struct {
	path string
}

// NewStore creates a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration. A missing or empty file yields an empty
// configuration.
func (s *Store) Load(_ context.Context) (*domain.Configuration, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no configuration at %s, starting empty", s.path)
		return domain.NewConfiguration(), nil
	}
	if err != nil {
		return nil, domain.NewConfigError(domain.ErrConfigRead, s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.NewConfiguration(), nil
	}

	cfg := domain.NewConfiguration()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewConfigError(domain.ErrConfigDeserialize, s.path, err)
	}
	if cfg.Connections == nil {
		cfg.Connections = map[string]*domain.Connection{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError(domain.ErrConfigDeserialize, s.path, err)
	}
	return cfg, nil
}

// Save writes the configuration atomically with owner-only permissions.
func (s *Store) Save(_ context.Context, cfg *domain.Configuration) error {
	data, err := Marshal(cfg)
	if err != nil {
		return domain.NewConfigError(domain.ErrConfigSerialize, s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return domain.NewConfigError(domain.ErrConfigWrite, s.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return domain.NewConfigError(domain.ErrConfigWrite, s.path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return domain.NewConfigError(domain.ErrConfigWrite, s.path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return domain.NewConfigError(domain.ErrConfigWrite, s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return domain.NewConfigError(domain.ErrConfigWrite, s.path, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return domain.NewConfigError(domain.ErrConfigWrite, s.path, err)
	}

	logger.Debug("saved configuration to %s", s.path)
	return nil
}

// Marshal renders the configuration the way it is stored on disk.
func Marshal(cfg *domain.Configuration) ([]byte, error) {
	if cfg.Connections == nil {
		cfg.Connections = map[string]*domain.Connection{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

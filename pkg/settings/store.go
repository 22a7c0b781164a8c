package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/phylomovie/phylomovie/pkg/errors"
)

// Persisted state keys. The store file is one flat JSON object; keys
// outside this list are preserved untouched across saves.
const (
	KeyAppearance      = "phylo.appearance"
	KeyColorCategories = "phylo.colorCategories"
)

// Store persists settings in a flat JSON key-value file.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
}

// NewStore opens (or prepares to create) the settings file. An empty
// path defaults to ~/.config/phylomovie/settings.json. A missing file
// is not an error; it appears on first save.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "resolving home directory")
		}
		path = filepath.Join(home, ".config", "phylomovie", "settings.json")
	}

	s := &Store{path: path, values: map[string]json.RawMessage{}}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "reading settings file")
	}
	if err := json.Unmarshal(raw, &s.values); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing settings file")
	}
	return s, nil
}

// Appearance returns the persisted appearance, or the defaults when
// none is stored. Stored objects with missing fields inherit defaults
// for those fields.
func (s *Store) Appearance() (Appearance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := DefaultAppearance()
	raw, ok := s.values[KeyAppearance]
	if !ok {
		return a, nil
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return DefaultAppearance(), errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing stored appearance")
	}
	if err := a.Validate(); err != nil {
		return DefaultAppearance(), err
	}
	return a, nil
}

// SetAppearance validates and persists the appearance parameters.
func (s *Store) SetAppearance(a Appearance) error {
	if err := a.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding appearance")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyAppearance] = raw
	return s.flushLocked()
}

// ColorCategories returns the persisted taxon-group color assignments.
func (s *Store) ColorCategories() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.values[KeyColorCategories]
	if !ok {
		return map[string]string{}, nil
	}
	var categories map[string]string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing stored color categories")
	}
	return categories, nil
}

// SetColorCategories persists the taxon-group color assignments.
func (s *Store) SetColorCategories(categories map[string]string) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding color categories")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyColorCategories] = raw
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "creating settings directory")
	}
	raw, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding settings")
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "writing settings file")
	}
	return nil
}

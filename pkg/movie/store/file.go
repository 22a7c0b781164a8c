package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/movie"
)

// envelope is the on-disk document: listing metadata plus the movie.
type envelope struct {
	Info
	Movie *movie.Data `json:"movie"`
}

// FileStore persists movies as JSON files, one per movie, named by
// content hash. It is the default backend for CLI use.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-backed store. An empty baseDir defaults
// to ~/.config/phylomovie/movies.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "resolving home directory")
		}
		baseDir = filepath.Join(home, ".config", "phylomovie", "movies")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "creating movie store directory")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) moviePath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*movie.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(s.moviePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeMovieNotFound, "movie %s not found", id)
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "reading movie %s", id)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parsing stored movie %s", id)
	}
	if env.Movie == nil {
		return nil, errors.New(errors.ErrCodeStore, "stored movie %s has no payload", id)
	}
	if err := env.Movie.Init(); err != nil {
		return nil, err
	}
	return env.Movie, nil
}

func (s *FileStore) Put(ctx context.Context, data *movie.Data) (string, error) {
	if err := data.Validate(); err != nil {
		return "", err
	}
	id, err := data.Hash()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(envelope{
		Info: Info{
			ID:        id,
			Name:      data.Name(),
			TreeCount: data.TreeCount(),
			CreatedAt: time.Now().UTC(),
		},
		Movie: data,
	}, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "encoding movie %s", id)
	}
	if err := os.WriteFile(s.moviePath(id), raw, 0600); err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "writing movie %s", id)
	}
	return id, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.moviePath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStore, err, "deleting movie %s", id)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "listing movie store")
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		infos = append(infos, env.Info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.After(infos[j].CreatedAt) })
	return infos, nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

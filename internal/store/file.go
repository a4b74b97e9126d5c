package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

const fileExt = ".json"

// FileStore keeps one JSON file per record under root/<ns>/<name>.json.
// Writes go through a temp file + rename so a crash never leaves a
// half-written record behind.
type FileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore creates root (0700) if needed.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("store: data dir is empty")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(ns, name string) (string, error) {
	if err := validName(ns); err != nil {
		return "", err
	}
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, ns, name+fileExt), nil
}

func (s *FileStore) Get(_ context.Context, ns, name string) ([]byte, error) {
	p, err := s.path(ns, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FileStore) Put(_ context.Context, ns, name string, data []byte) error {
	p, err := s.path(ns, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteFileAtomic(p, data)
}

func (s *FileStore) Delete(_ context.Context, ns, name string) error {
	p, err := s.path(ns, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *FileStore) List(_ context.Context, ns string) ([]string, error) {
	if err := validName(ns); err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(os.DirFS(s.root), path.Join(ns, "*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", ns, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }

// WriteFileAtomic writes data to p via a temp file in the same directory,
// then renames it into place with 0600 permissions.
func WriteFileAtomic(p string, data []byte) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".lifeplan-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

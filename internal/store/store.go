// Package store is the key-value record store behind checklists, habits and
// the daily log. Records are JSON documents addressed by a namespace and a
// name, e.g. ("checklists", "2025-06-09").
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by Get and Delete when a key has no record.
var ErrNotFound = errors.New("store: record not found")

// Store is implemented by FileStore and SQLiteStore.
type Store interface {
	Get(ctx context.Context, ns, name string) ([]byte, error)
	Put(ctx context.Context, ns, name string, data []byte) error
	Delete(ctx context.Context, ns, name string) error
	// List returns every record name in ns, sorted ascending.
	List(ctx context.Context, ns string) ([]string, error)
	Close() error
}

// Open builds a store for the configured backend ("file" or "sqlite").
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", "file":
		s, err := NewFileStore(dataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(dataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}

// validName rejects names that could escape the namespace.
func validName(s string) error {
	if s == "" {
		return errors.New("store: empty name")
	}
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return fmt.Errorf("store: invalid name %q", s)
	}
	return nil
}

// GetJSON decodes the record at (ns, name) into v.
func GetJSON(ctx context.Context, s Store, ns, name string, v any) error {
	data, err := s.Get(ctx, ns, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", ns, name, err)
	}
	return nil
}

// PutJSON encodes v and stores it at (ns, name).
func PutJSON(ctx context.Context, s Store, ns, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, name, err)
	}
	return s.Put(ctx, ns, name, data)
}

// GetOrDefault decodes (ns, name) into v, or leaves v untouched and reports
// found=false when the record does not exist.
func GetOrDefault(ctx context.Context, s Store, ns, name string, v any) (found bool, err error) {
	err = GetJSON(ctx, s, ns, name, v)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListRecent returns up to n record names in ns, newest (largest) first.
func ListRecent(ctx context.Context, s Store, ns string, n int) ([]string, error) {
	names, err := s.List(ctx, ns)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if n >= 0 && len(names) > n {
		names = names[:n]
	}
	return names, nil
}

// LatestBefore returns the largest name in ns that sorts strictly before
// limit, or "" when there is none.
func LatestBefore(ctx context.Context, s Store, ns, limit string) (string, error) {
	names, err := s.List(ctx, ns)
	if err != nil {
		return "", err
	}
	latest := ""
	for _, n := range names {
		if n < limit && n > latest {
			latest = n
		}
	}
	return latest, nil
}

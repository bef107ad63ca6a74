package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"
)

// Storage manages all database files below one directory: the
// source databases and the view index stores. Index files carry
// the "-mrview-" infix in their name and are not listed as
// databases.
type Storage struct {
	path string
	dbs  map[string]*Database
	mu   sync.RWMutex
}

func Open(p string) (*Storage, error) {
	s := &Storage{
		path: p,
		dbs:  make(map[string]*Database),
	}
	err := s.ReloadDatabases(context.Background())
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) String() string {
	return "<Storage path=" + s.path + ">"
}

func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) ReloadDatabases(ctx context.Context) error {
	files, err := os.ReadDir(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.dbs = make(map[string]*Database)
	s.mu.Unlock()

	for _, f := range files {
		if f.IsDir() || strings.Contains(f.Name(), ViewStoreInfix) {
			continue
		}

		_, err := s.CreateDatabase(ctx, path.Base(f.Name()))
		if err != nil {
			return fmt.Errorf("loading db %q failed: %w", f.Name(), err)
		}
	}

	return nil
}

func (s *Storage) DeleteDatabase(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.dbs[name]
	if !ok {
		return fmt.Errorf("unknown database %q", name)
	}

	err := db.Close()
	if err != nil {
		return err
	}

	err = os.Remove(path.Join(s.path, name))
	if err != nil {
		return err
	}

	delete(s.dbs, name)

	return nil
}

func (s *Storage) Databases(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.dbs))
	var i int
	for name := range s.dbs {
		names[i] = name
		i++
	}

	return names, nil
}

func (s *Storage) Database(ctx context.Context, name string) (*Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, ok := s.dbs[name]
	if !ok {
		return nil, fmt.Errorf("database %q not found", name)
	}

	return db, nil
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, db := range s.dbs {
		err := db.Close()
		if err != nil {
			return fmt.Errorf("failed to close db %q: %w", name, err)
		}
	}
	s.dbs = make(map[string]*Database)

	return nil
}

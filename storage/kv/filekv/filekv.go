// Package filekv persists each collection as one JSON document in a data
// directory, the durable stand-in for the browser's local storage.
package filekv

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/dkonate/ecolia/storage/kv"
)

const ext = ".json"

// collection names become file names; keep them boring
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type Store struct {
	dir string
}

var _ kv.Store = (*Store)(nil)

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating data dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(collection string) (string, error) {
	if !nameRegex.MatchString(collection) {
		return "", kv.ErrInvalidCollection
	}
	return filepath.Join(s.dir, collection+ext), nil
}

func (s *Store) Get(collection string) ([]byte, bool, error) {
	path, err := s.path(collection)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading collection %s", collection)
	}
	return data, true, nil
}

// Set writes through a temp file + rename so a crash mid-write never leaves
// a half-written collection behind.
func (s *Store) Set(collection string, data []byte) error {
	path, err := s.path(collection)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "writing collection %s", collection)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing collection %s", collection)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing collection %s", collection)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "writing collection %s", collection)
	}
	return nil
}

func (s *Store) Delete(collection string) error {
	path, err := s.path(collection)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "deleting collection %s", collection)
	}
	return nil
}

func (s *Store) Collections() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing data dir %s", s.dir)
	}
	cols := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		cols = append(cols, strings.TrimSuffix(name, ext))
	}
	sort.Strings(cols)
	return cols, nil
}

func (s *Store) Clear() error {
	cols, err := s.Collections()
	if err != nil {
		return err
	}
	for _, col := range cols {
		if err := s.Delete(col); err != nil {
			return err
		}
	}
	return nil
}

// Package record implements the typed collection store: every collection is
// one JSON document in the kv substrate, read and rewritten whole on each
// mutation. There is exactly one logical writer at a time (single user,
// single process), so no cross-collection locking is attempted.
package record

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dkonate/ecolia/storage/kv"
)

// NowFunc stamps created/updated times. Mockable.
var NowFunc = time.Now

// Meta is embedded by every stored record.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) RecordID() string { return m.ID }

func (m *Meta) StampCreated(id string, t time.Time) {
	m.ID = id
	m.CreatedAt = t
	m.UpdatedAt = t
}

func (m *Meta) StampUpdated(t time.Time) { m.UpdatedAt = t }

// Record constrains collection element types to those embedding Meta.
type Record[T any] interface {
	*T
	RecordID() string
	StampCreated(id string, t time.Time)
	StampUpdated(t time.Time)
}

type DB struct {
	store kv.Store
}

func Open(store kv.Store) *DB {
	return &DB{store: store}
}

// Export dumps every collection into a single indented JSON document.
func (db *DB) Export() ([]byte, error) {
	cols, err := db.store.Collections()
	if err != nil {
		return nil, errors.Wrap(err, "exporting data")
	}
	data := make(map[string]json.RawMessage, len(cols))
	for _, col := range cols {
		raw, ok, err := db.store.Get(col)
		if err != nil {
			return nil, errors.Wrap(err, "exporting data")
		}
		if !ok || len(raw) == 0 {
			raw = []byte("[]")
		}
		data[col] = raw
	}
	return json.MarshalIndent(data, "", "  ")
}

// Import replaces the listed collections with the given dump.
func (db *DB) Import(dump []byte) error {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(dump, &data); err != nil {
		return errors.Wrap(err, "importing data")
	}
	for col, raw := range data {
		if err := db.store.Set(col, raw); err != nil {
			return errors.Wrap(err, "importing data")
		}
	}
	return nil
}

// Reset drops all data.
func (db *DB) Reset() error {
	return errors.Wrap(db.store.Clear(), "resetting data")
}

// Collection is a typed view over one named collection.
type Collection[T any, PT Record[T]] struct {
	db   *DB
	name string
}

func NewCollection[T any, PT Record[T]](db *DB, name string) *Collection[T, PT] {
	return &Collection[T, PT]{db: db, name: name}
}

func (c *Collection[T, PT]) Name() string { return c.name }

func (c *Collection[T, PT]) load() ([]T, error) {
	data, ok, err := c.db.store.Get(c.name)
	if err != nil {
		return nil, errors.Wrapf(err, "loading collection %s", c.name)
	}
	if !ok || len(data) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "decoding collection %s", c.name)
	}
	return items, nil
}

func (c *Collection[T, PT]) save(items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encoding collection %s", c.name)
	}
	return errors.Wrapf(c.db.store.Set(c.name, data), "saving collection %s", c.name)
}

func (c *Collection[T, PT]) All() ([]T, error) {
	return c.load()
}

func (c *Collection[T, PT]) Get(id string) (T, bool, error) {
	var zero T
	items, err := c.load()
	if err != nil {
		return zero, false, err
	}
	for i := range items {
		if PT(&items[i]).RecordID() == id {
			return items[i], true, nil
		}
	}
	return zero, false, nil
}

func (c *Collection[T, PT]) Create(item T) (T, error) {
	var zero T
	items, err := c.load()
	if err != nil {
		return zero, err
	}
	PT(&item).StampCreated(newID(), NowFunc().UTC())
	items = append(items, item)
	if err := c.save(items); err != nil {
		return zero, err
	}
	return item, nil
}

// Update applies `mutate` to the record with the given id and stamps the
// update time. A missing id is reported via ok, not an error.
func (c *Collection[T, PT]) Update(id string, mutate func(*T)) (T, bool, error) {
	var zero T
	items, err := c.load()
	if err != nil {
		return zero, false, err
	}
	for i := range items {
		if PT(&items[i]).RecordID() != id {
			continue
		}
		mutate(&items[i])
		PT(&items[i]).StampUpdated(NowFunc().UTC())
		if err := c.save(items); err != nil {
			return zero, false, err
		}
		return items[i], true, nil
	}
	return zero, false, nil
}

func (c *Collection[T, PT]) Delete(id string) (bool, error) {
	items, err := c.load()
	if err != nil {
		return false, err
	}
	kept := items[:0]
	for i := range items {
		if PT(&items[i]).RecordID() != id {
			kept = append(kept, items[i])
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	return true, c.save(kept)
}

// Filter returns the records matching `keep`.
func (c *Collection[T, PT]) Filter(keep func(T) bool) ([]T, error) {
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	res := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			res = append(res, item)
		}
	}
	return res, nil
}

// First returns the first record matching `match`.
func (c *Collection[T, PT]) First(match func(T) bool) (T, bool, error) {
	var zero T
	items, err := c.load()
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if match(item) {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Search does a case-insensitive substring match on the strings extracted
// from each record by `fields`. An empty term matches everything.
func (c *Collection[T, PT]) Search(term string, fields func(T) []string) ([]T, error) {
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	if term == "" {
		return items, nil
	}
	term = strings.ToLower(term)
	res := make([]T, 0, len(items))
	for _, item := range items {
		for _, fld := range fields(item) {
			if strings.Contains(strings.ToLower(fld), term) {
				res = append(res, item)
				break
			}
		}
	}
	return res, nil
}

func (c *Collection[T, PT]) Count() (int, error) {
	items, err := c.load()
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// newID produces unique, roughly time-ordered identifiers:
// millisecond timestamp + random suffix.
func newID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	return strconv.FormatInt(NowFunc().UnixMilli(), 10) + suffix
}

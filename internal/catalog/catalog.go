// Package catalog stores named traversals in a key-value database.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	hkv "github.com/hidal-go/hidalgo/kv"
	"github.com/hidal-go/hidalgo/kv/flat"
	"github.com/hidal-go/hidalgo/kv/flat/btree"
	_ "github.com/hidal-go/hidalgo/kv/flat/leveldb"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/query/gremlin"
)

var (
	ErrNotFound       = errors.New("catalog: traversal not found")
	ErrInvalidName    = errors.New("catalog: invalid traversal name")
	ErrUnknownBackend = errors.New("catalog: unknown backend")
)

// Backend names accepted by Open.
const (
	LevelDB = "leveldb"
	Badger  = "badger"
)

var bucket = hkv.Key{[]byte("traversals")}

// Entry is a saved traversal together with its source text.
type Entry struct {
	Name string `json:"name"`
	// Lang is the language of the source text: "js" or "json".
	Lang      string            `json:"lang"`
	Text      string            `json:"text"`
	Traversal gremlin.Traversal `json:"traversal"`
	Updated   time.Time         `json:"updated"`
}

// store keeps encoded entries by name.
//
// get and del return ErrNotFound for missing names.
type store interface {
	put(ctx context.Context, name string, data []byte) error
	get(ctx context.Context, name string) ([]byte, error)
	del(ctx context.Context, name string) error
	each(ctx context.Context, fnc func(data []byte) error) error
	Close() error
}

// Catalog is a collection of named traversals.
type Catalog struct {
	st store
}

// New wraps an existing key-value database.
func New(db hkv.KV) *Catalog {
	return &Catalog{st: kvStore{db: db}}
}

// NewMemory creates an in-memory catalog.
func NewMemory() *Catalog {
	return New(flat.Upgrade(btree.New()))
}

// Open opens a catalog persisted in a directory using the named backend.
// An empty backend means leveldb. An empty path creates an in-memory catalog.
func Open(backend, path string) (*Catalog, error) {
	if path == "" {
		return NewMemory(), nil
	}
	switch backend {
	case "", LevelDB:
		return openLevelDB(path)
	case Badger:
		st, err := openBadger(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open catalog at %q: %w", path, err)
		}
		clog.Infof("catalog: opened badger at %s", path)
		return &Catalog{st: st}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

func openLevelDB(path string) (*Catalog, error) {
	for _, r := range hkv.List() {
		if r.Name != "flat.leveldb" && r.Name != "leveldb" {
			continue
		}
		db, err := r.OpenPath(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open catalog at %q: %w", path, err)
		}
		clog.Infof("catalog: opened %s at %s", r.Name, path)
		return New(db), nil
	}
	return nil, fmt.Errorf("catalog: leveldb backend is not registered")
}

func (c *Catalog) Close() error {
	return c.st.Close()
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "/\x00")
}

// Put saves the entry, replacing an entry with the same name.
func (c *Catalog) Put(ctx context.Context, e Entry) error {
	if !validName(e.Name) {
		return ErrInvalidName
	}
	if e.Updated.IsZero() {
		e.Updated = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.st.put(ctx, e.Name, data)
}

func decode(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("cannot decode saved traversal: %w", err)
	}
	return &e, nil
}

// Get returns a saved entry by name.
func (c *Catalog) Get(ctx context.Context, name string) (*Entry, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	data, err := c.st.get(ctx, name)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// Delete removes the entry. It returns ErrNotFound if there is no such entry.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	return c.st.del(ctx, name)
}

// List returns all entries sorted by name.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := c.st.each(ctx, func(data []byte) error {
		e, err := decode(data)
		if err != nil {
			return err
		}
		out = append(out, *e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// kvStore keeps entries in a hidalgo key-value database under a single bucket.
type kvStore struct {
	db hkv.KV
}

func key(name string) hkv.Key {
	return bucket.AppendBytes([]byte(name))
}

func (s kvStore) Close() error { return s.db.Close() }

func (s kvStore) put(ctx context.Context, name string, data []byte) error {
	return hkv.Update(ctx, s.db, func(tx hkv.Tx) error {
		return tx.Put(key(name), data)
	})
}

func (s kvStore) get(ctx context.Context, name string) ([]byte, error) {
	var out []byte
	err := hkv.View(s.db, func(tx hkv.Tx) error {
		data, err := tx.Get(ctx, key(name))
		if err == hkv.ErrNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		out = data
		return nil
	})
	return out, err
}

func (s kvStore) del(ctx context.Context, name string) error {
	return hkv.Update(ctx, s.db, func(tx hkv.Tx) error {
		if _, err := tx.Get(ctx, key(name)); err == hkv.ErrNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return tx.Del(key(name))
	})
}

func (s kvStore) each(ctx context.Context, fnc func(data []byte) error) error {
	return hkv.View(s.db, func(tx hkv.Tx) error {
		it := tx.Scan(bucket)
		defer it.Close()
		for it.Next(ctx) {
			if err := fnc(it.Val()); err != nil {
				return err
			}
		}
		return it.Err()
	})
}

package catalog

import (
	"context"
	"os"

	"github.com/dgraph-io/badger/v4"
)

var badgerPrefix = []byte("traversals/")

// badgerStore keeps entries in a badger database, one key per name.
type badgerStore struct {
	db *badger.DB
}

func openBadger(path string) (*badgerStore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

func badgerKey(name string) []byte {
	k := make([]byte, 0, len(badgerPrefix)+len(name))
	k = append(k, badgerPrefix...)
	return append(k, name...)
}

func (s *badgerStore) Close() error { return s.db.Close() }

func (s *badgerStore) put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(name), data)
	})
}

func (s *badgerStore) get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(name))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (s *badgerStore) del(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		k := badgerKey(name)
		if _, err := txn.Get(k); err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(k)
	})
}

func (s *badgerStore) each(ctx context.Context, fnc func(data []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(badgerPrefix); it.ValidForPrefix(badgerPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fnc); err != nil {
				return err
			}
		}
		return nil
	})
}

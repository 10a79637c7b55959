// Package store persists fetched upstream documents (badger) and
// valuation results (Postgres).
package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a key or run does not exist.
var ErrNotFound = errors.New("not found")

const documentPrefix = "doc:"

// Documents is a badger-backed archive of raw documents. Each value is the
// fetch time (8 bytes, unix nanoseconds, big endian) followed by the body.
type Documents struct {
	db  *badger.DB
	ttl time.Duration
	now func() time.Time
}

// OpenDocuments opens (or creates) a badger database in dir. ttl bounds
// how long a document is kept at all; 0 keeps it forever.
func OpenDocuments(dir string, ttl time.Duration) (*Documents, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open document store %s: %w", dir, err)
	}
	return NewDocuments(db, ttl), nil
}

// NewDocuments wraps an open badger database.
func NewDocuments(db *badger.DB, ttl time.Duration) *Documents {
	return &Documents{db: db, ttl: ttl, now: time.Now}
}

// Close closes the underlying database.
func (d *Documents) Close() error {
	return d.db.Close()
}

// Save stores data under key stamped with the current time.
func (d *Documents) Save(_ context.Context, key string, data []byte) error {
	val := make([]byte, 8+len(data))
	binary.BigEndian.PutUint64(val, uint64(d.now().UnixNano()))
	copy(val[8:], data)

	return d.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(documentPrefix+key), val)
		if d.ttl > 0 {
			// keep documents around for feed-based revalidation
			e = e.WithTTL(10 * d.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Load returns the document stored under key and when it was saved.
func (d *Documents) Load(_ context.Context, key string) ([]byte, time.Time, error) {
	var (
		data []byte
		at   time.Time
	)
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(documentPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("document %s: %w", key, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) < 8 {
				return fmt.Errorf("document %s: corrupt header", key)
			}
			at = time.Unix(0, int64(binary.BigEndian.Uint64(val[:8])))
			data = append([]byte(nil), val[8:]...)
			return nil
		})
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, at, nil
}

// Delete removes a document.
func (d *Documents) Delete(_ context.Context, key string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(documentPrefix + key))
	})
}

// Keys lists stored document keys with the given prefix.
func (d *Documents) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(documentPrefix + prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(documentPrefix):]))
		}
		return nil
	})
	return keys, err
}

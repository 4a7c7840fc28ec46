// ABOUTME: Badger key-value backend implementing Repository.
// ABOUTME: Stores JSON records under type-prefixed keys; also backs the Charm store.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/fitcentre/internal/logging"
)

const (
	schemaPrefix     = "schema:"
	memberPrefix     = "member:"
	assessmentPrefix = "assessment:"
	conditionPrefix  = "condition:"

	// keySep joins the parts of a composite natural key.
	keySep = "\x00"
)

// KVStore is a Repository backed by a Badger database.
type KVStore struct {
	db         *badger.DB
	readOnly   bool
	afterWrite func()
	closer     func() error
}

// Compile-time check that KVStore implements Repository.
var _ Repository = (*KVStore)(nil)

// KVOption configures a KVStore.
type KVOption func(*KVStore)

// WithAfterWrite registers a hook run after every successful write.
func WithAfterWrite(fn func()) KVOption {
	return func(s *KVStore) {
		s.afterWrite = fn
	}
}

// WithReadOnly makes every write fail with ErrStorageUnavailable.
func WithReadOnly(readOnly bool) KVOption {
	return func(s *KVStore) {
		s.readOnly = readOnly
	}
}

// WithCloser replaces the default Close, which closes the Badger database.
func WithCloser(fn func() error) KVOption {
	return func(s *KVStore) {
		s.closer = fn
	}
}

// NewKVStore wraps an open Badger database and ensures the schema markers exist.
func NewKVStore(db *badger.DB, opts ...KVOption) (*KVStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: badger database is nil", ErrStorageUnavailable)
	}
	s := &KVStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.EnsureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenBadger opens or creates a Badger database in dir.
func OpenBadger(dir string) (*KVStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(logging.Log).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %v", ErrStorageUnavailable, err)
	}

	s, err := NewKVStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.WithComponent("storage").WithField("path", dir).Debug("opened badger database")
	return s, nil
}

// Close releases the underlying database.
func (s *KVStore) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return s.db.Close()
}

// EnsureSchema writes a marker per collection. A read-only store is left untouched.
func (s *KVStore) EnsureSchema() error {
	if s.readOnly {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, c := range AllCollections {
			key := []byte(schemaPrefix + c)
			if _, err := txn.Get(key); err == nil {
				continue
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(key, []byte(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: apply schema: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Exists reports whether the collection marker is present.
func (s *KVStore) Exists(collection string) (bool, error) {
	if !isCollection(collection) {
		return false, nil
	}
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(schemaPrefix + collection))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%w: check collection %s: %v", ErrStorageUnavailable, collection, err)
	}
	return found, nil
}

// update runs fn in a read-write transaction and fires the after-write hook on success.
func (s *KVStore) update(op string, fn func(txn *badger.Txn) error) error {
	if s.readOnly {
		return fmt.Errorf("%s: %w: database is locked by another process", op, ErrStorageUnavailable)
	}
	if err := s.db.Update(fn); err != nil {
		return err
	}
	if s.afterWrite != nil {
		s.afterWrite()
	}
	return nil
}

func memberKey(email string) []byte {
	return []byte(memberPrefix + email)
}

func assessmentKey(email, date string) []byte {
	return []byte(assessmentPrefix + email + keySep + date)
}

func conditionKey(email, name string) []byte {
	return []byte(conditionPrefix + email + keySep + name)
}

// keyExists reports whether key is present in txn.
func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// getJSON decodes the value at key into v. Missing keys return badger.ErrKeyNotFound.
func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return txn.Set(key, data)
}

// eachValue calls fn with the value of every key under prefix, in key order.
func eachValue(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// deletePrefix removes every key under prefix and returns how many were removed.
func deletePrefix(txn *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

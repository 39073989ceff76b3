// Package storage is the persistent key-value layer backing both the
// terrain Cache (internal/terrain) and World save/load. Grounded on the
// teacher's internal/storage/world_storage.go badger usage, generalized
// from a single world-shaped schema to a namespaced []byte->[]byte
// interface (spec.md §1: "we specify only its read/write interface and
// naming scheme").
package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
	"github.com/latticeworld/worldcore/internal/logging"
)

var storageLog = logging.GetLogger("storage")

// BadgerStore is a thin []byte -> []byte wrapper over a badger.DB, with
// values zstd-compressed before the write (values here are serialized
// Summary/World-save blobs, which compress well).
type BadgerStore struct {
	db  *badger.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens (creating if absent) a badger database rooted at dir.
func Open(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store at %s: %w", dir, err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &BadgerStore{db: db, enc: enc, dec: dec}, nil
}

// Close releases the underlying database handle.
func (s *BadgerStore) Close() error {
	s.dec.Close()
	return s.db.Close()
}

// Get reads and decompresses the value at key, returning (nil, false) if
// absent.
func (s *BadgerStore) Get(key []byte) ([]byte, bool, error) {
	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			compressed = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	if compressed == nil {
		return nil, false, nil
	}
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", key, err)
	}
	return raw, true, nil
}

// Set compresses and writes value at key.
func (s *BadgerStore) Set(key, value []byte) error {
	compressed := s.enc.EncodeAll(value, nil)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, compressed)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key, if present.
func (s *BadgerStore) Delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Key builds the namespaced key scheme shared by every caller:
// "<namespace>:<plane>:<x>,<y>".
func Key(namespace string, plane uint64, x, y int) []byte {
	return []byte(fmt.Sprintf("%s:%d:%d,%d", namespace, plane, x, y))
}

// StableKey builds the namespaced key scheme used by World save/load,
// addressed by stable id rather than position: "<namespace>:<kind>:<id>".
func StableKey(namespace, kind string, stable uint64) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", namespace, kind, stable))
}

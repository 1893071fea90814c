package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketKeystores = []byte("keystores")

// openTimeout bounds the wait for another process's database lock.
const openTimeout = 2 * time.Second

// Store persists keystore documents in a bbolt database, keyed by name.
// Documents are stored encrypted; the store never sees a password.
type Store struct {
	db *bbolt.DB
}

// OpenStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("keystore: create directory: %w", err)
	}
	// bbolt holds a file lock for the lifetime of the handle.
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("keystore: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKeystores)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("keystore: create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores ks under name. Existing names are never overwritten.
func (s *Store) Put(name string, ks *Keystore) error {
	if name == "" {
		return fmt.Errorf("%w: name", ErrNilParam)
	}
	if ks == nil {
		return fmt.Errorf("%w: keystore", ErrNilParam)
	}
	data, err := json.Marshal(ks)
	if err != nil {
		return fmt.Errorf("keystore: encode: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKeystores)
		if b.Get([]byte(name)) != nil {
			return fmt.Errorf("%w: %q", ErrKeystoreExists, name)
		}
		return b.Put([]byte(name), data)
	})
}

// Get returns the keystore stored under name.
func (s *Store) Get(name string) (*Keystore, error) {
	var ks *Keystore
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketKeystores).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %q", ErrKeystoreNotFound, name)
		}
		// Parse copies out of the mmap'd value.
		parsed, err := Parse(data)
		if err != nil {
			return err
		}
		ks = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ks, nil
}

// List returns the stored names in byte order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKeystores).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("keystore: list: %w", err)
	}
	return names, nil
}

// Delete removes the keystore stored under name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKeystores)
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %q", ErrKeystoreNotFound, name)
		}
		return b.Delete([]byte(name))
	})
}

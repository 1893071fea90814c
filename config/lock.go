// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const lockFileName = "libwallet.lock"

// DataDirLock is an exclusive advisory lock on a data directory. Commands
// that write the sealed seed or the keystore database hold it so two
// processes never interleave writes.
type DataDirLock struct {
	f *os.File
}

// LockDataDir takes the data directory lock without blocking, creating the
// directory if needed. It fails with ErrDataDirLocked when another process
// holds the lock.
func LockDataDir(dataDir string) (*DataDirLock, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("config: create data directory: %w", err)
	}
	path := filepath.Join(filepath.Clean(dataDir), lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("config: open lock file: %w", err)
	}
	if err := tryLock(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrDataDirLocked, err)
	}
	return &DataDirLock{f: f}, nil
}

// Release drops the lock. It is safe to call more than once.
func (l *DataDirLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlock(l.f)
	err := l.f.Close()
	l.f = nil
	return err
}

// Close implements io.Closer.
func (l *DataDirLock) Close() error { return l.Release() }

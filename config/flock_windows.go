// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

//go:build windows

package config

import "os"

// Windows has no flock; the lock file only marks the directory as in use.

func tryLock(*os.File) error { return nil }

func unlock(*os.File) {}

// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and stores the CLI settings file. The file holds one
// `key = value` pair per line; lines starting with '#' are comments.
// Environment variables prefixed LIBWALLET_ override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bitfsorg/libwallet-go/network"
	"github.com/bitfsorg/libwallet-go/tx"
)

// File names inside the data directory.
const (
	configFileName   = "config"
	keystoreFileName = "keystores.db"
	sealedSeedName   = "seed.sealed"
)

// Config keys as they appear in the file.
const (
	keyDataDir     = "datadir"
	keyNetwork     = "network"
	keyChain       = "chain"
	keyLogLevel    = "loglevel"
	keyLogFile     = "logfile"
	keyFeeRate     = "feerate"
	keyRPCURL      = "rpcurl"
	keyRPCUser     = "rpcuser"
	keyRPCPassword = "rpcpassword"
	keyKDFTimeout  = "kdftimeout"
)

// envBindings maps config keys to their environment variable names.
var envBindings = map[string]string{
	keyDataDir:     "LIBWALLET_DATADIR",
	keyNetwork:     "LIBWALLET_NETWORK",
	keyChain:       "LIBWALLET_CHAIN",
	keyLogLevel:    "LIBWALLET_LOG_LEVEL",
	keyLogFile:     "LIBWALLET_LOG_FILE",
	keyFeeRate:     "LIBWALLET_FEE_RATE",
	keyRPCURL:      network.EnvRPCURL,
	keyRPCUser:     network.EnvRPCUser,
	keyRPCPassword: network.EnvRPCPass,
	keyKDFTimeout:  "LIBWALLET_KDF_TIMEOUT",
}

// Config holds the CLI settings.
type Config struct {
	DataDir     string
	Network     string // mainnet, testnet or regtest
	Chain       string // registry ticker
	LogLevel    string
	LogFile     string // empty: stderr only
	FeeRate     uint64 // smallest unit per byte
	RPCURL      string
	RPCUser     string
	RPCPassword string
	KDFTimeout  time.Duration // upper bound on keystore key derivation
}

// DefaultDataDir returns ~/.libwallet, or ./.libwallet when the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".libwallet"
	}
	return filepath.Join(home, ".libwallet")
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		Network:    "mainnet",
		Chain:      "BSV",
		LogLevel:   "info",
		FeeRate:    tx.DefaultFeeRate,
		KDFTimeout: 2 * time.Minute,
	}
}

// ConfigPath returns the path of the config file inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), configFileName)
}

// KeystorePath returns the path of the keystore database inside dataDir.
func KeystorePath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), keystoreFileName)
}

// SealedSeedPath returns the path of the sealed wallet seed inside dataDir.
func SealedSeedPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), sealedSeedName)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("properties")

	def := DefaultConfig()
	v.SetDefault(keyDataDir, def.DataDir)
	v.SetDefault(keyNetwork, def.Network)
	v.SetDefault(keyChain, def.Chain)
	v.SetDefault(keyLogLevel, def.LogLevel)
	v.SetDefault(keyLogFile, def.LogFile)
	v.SetDefault(keyFeeRate, strconv.FormatUint(def.FeeRate, 10))
	v.SetDefault(keyRPCURL, def.RPCURL)
	v.SetDefault(keyRPCUser, def.RPCUser)
	v.SetDefault(keyRPCPassword, def.RPCPassword)
	v.SetDefault(keyKDFTimeout, def.KDFTimeout.String())

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// LoadConfig reads the file at path and overlays environment variables.
// Keys missing from the file keep their defaults; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := checkLines(data); err != nil {
		return Config{}, err
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigLine, err)
	}
	return fromViper(v)
}

// LoadEnv returns the defaults overlaid with environment variables only.
func LoadEnv() (Config, error) {
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (Config, error) {
	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	cfg := Config{
		DataDir:     str(keyDataDir),
		Network:     str(keyNetwork),
		Chain:       strings.ToUpper(str(keyChain)),
		LogLevel:    str(keyLogLevel),
		LogFile:     str(keyLogFile),
		RPCURL:      str(keyRPCURL),
		RPCUser:     str(keyRPCUser),
		RPCPassword: str(keyRPCPassword),
	}

	// viper's cast helpers swallow parse errors, so numeric values are
	// parsed here to surface them.
	if s := str(keyFeeRate); s != "" {
		rate, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %q", ErrInvalidFeeRate, keyFeeRate, s)
		}
		cfg.FeeRate = rate
	}
	if s := str(keyKDFTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidKDFTimeout, keyKDFTimeout, err)
		}
		cfg.KDFTimeout = d
	}
	return cfg, nil
}

// checkLines rejects any non-comment line without an '=' separator. The
// properties parser would otherwise accept it as a key with no value.
func checkLines(data []byte) error {
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "=") {
			return fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, i+1, line)
		}
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories. The file is
// written with mode 0600 because it may hold RPC credentials.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# libwallet configuration\n")
	b.WriteString("# key = value, one per line. LIBWALLET_* environment variables override.\n\n")
	write := func(key, value string) {
		fmt.Fprintf(&b, "%s = %s\n", key, value)
	}
	write(keyDataDir, cfg.DataDir)
	write(keyNetwork, cfg.Network)
	write(keyChain, cfg.Chain)
	write(keyLogLevel, cfg.LogLevel)
	write(keyLogFile, cfg.LogFile)
	write(keyFeeRate, strconv.FormatUint(cfg.FeeRate, 10))
	b.WriteString("\n# JSON-RPC backend used by `send --broadcast` and `balance`\n")
	write(keyRPCURL, cfg.RPCURL)
	write(keyRPCUser, cfg.RPCUser)
	write(keyRPCPassword, cfg.RPCPassword)
	b.WriteString("\n")
	write(keyKDFTimeout, cfg.KDFTimeout.String())

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

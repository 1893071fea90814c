// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"Chain", cfg.Chain, "BSV"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"FeeRate", cfg.FeeRate, uint64(1)},
		{"KDFTimeout", cfg.KDFTimeout, 2 * time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if !strings.HasSuffix(cfg.DataDir, ".libwallet") {
		t.Errorf("DataDir = %q, want suffix .libwallet", cfg.DataDir)
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	original := Config{
		DataDir:     "/tmp/test-libwallet",
		Network:     "testnet",
		Chain:       "TBTC",
		LogLevel:    "debug",
		LogFile:     "/tmp/libwallet.log",
		FeeRate:     5,
		RPCURL:      "http://127.0.0.1:18332",
		RPCUser:     "alice",
		RPCPassword: "s3cret",
		KDFTimeout:  45 * time.Second,
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != original {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectoryAndRestrictsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestSaveConfigOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "# libwallet configuration") {
		t.Error("missing header comment")
	}
	for key := range envBindings {
		if !strings.Contains(content, key+" = ") {
			t.Errorf("output missing key %q", key)
		}
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	path := writeConfig(t, "network = testnet\nthis-is-not-key-value\n")

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigLine) {
		t.Errorf("LoadConfig bad line: got %v, want ErrInvalidConfigLine", err)
	}
}

func TestLoadConfigCommentsAndBlanks(t *testing.T) {
	path := writeConfig(t, `# This is a comment
network = testnet

# Another comment
loglevel = debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	// Unset fields keep their defaults.
	if cfg.Chain != "BSV" {
		t.Errorf("Chain = %q, want default %q", cfg.Chain, "BSV")
	}
	if cfg.FeeRate != 1 {
		t.Errorf("FeeRate = %d, want default 1", cfg.FeeRate)
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	path := writeConfig(t, "futurekey = futurevalue\nnetwork = testnet\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
}

func TestLoadConfigParserEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(Config) bool
	}{
		{"empty value", "network=\n", func(c Config) bool { return c.Network == "" }},
		{"multiple equals", "logfile=/tmp/a=b.log\n", func(c Config) bool { return c.LogFile == "/tmp/a=b.log" }},
		{"whitespace around equals", "  network = testnet  \n", func(c Config) bool { return c.Network == "testnet" }},
		{"lowercase chain", "chain = bch\n", func(c Config) bool { return c.Chain == "BCH" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tc.content))
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if !tc.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestLoadConfigBadNumbers(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "feerate = 5x\n")); !errors.Is(err, ErrInvalidFeeRate) {
		t.Errorf("feerate: got %v, want ErrInvalidFeeRate", err)
	}
	if _, err := LoadConfig(writeConfig(t, "kdftimeout = soon\n")); !errors.Is(err, ErrInvalidKDFTimeout) {
		t.Errorf("kdftimeout: got %v, want ErrInvalidKDFTimeout", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LIBWALLET_NETWORK", "regtest")
	t.Setenv("LIBWALLET_RPC_URL", "http://env:18443")
	t.Setenv("LIBWALLET_FEE_RATE", "7")

	cfg, err := LoadConfig(writeConfig(t, "network = testnet\nrpcurl = http://file:1\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want env value", cfg.Network)
	}
	if cfg.RPCURL != "http://env:18443" {
		t.Errorf("RPCURL = %q, want env value", cfg.RPCURL)
	}
	if cfg.FeeRate != 7 {
		t.Errorf("FeeRate = %d, want 7", cfg.FeeRate)
	}

	envOnly, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if envOnly.Network != "regtest" || envOnly.Chain != "BSV" {
		t.Errorf("LoadEnv = %+v", envOnly)
	}
}

func TestLoadConfigPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("cannot test permission denial as root")
	}

	path := writeConfig(t, "network=testnet\n")
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(path, 0600) })

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file: expected error, got nil")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("LoadConfig on unreadable file should not return ErrConfigNotFound")
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_network", func(c *Config) { c.Network = "devnet" }, ErrInvalidNetwork},
		{"empty_network", func(c *Config) { c.Network = "" }, ErrInvalidNetwork},
		{"unknown_chain", func(c *Config) { c.Chain = "XYZ" }, ErrInvalidChain},
		{"testnet_chain_on_mainnet", func(c *Config) { c.Chain = "TBTC" }, ErrChainNetworkMismatch},
		{"mainnet_chain_on_testnet", func(c *Config) { c.Network = "testnet" }, ErrChainNetworkMismatch},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"zero_feerate", func(c *Config) { c.FeeRate = 0 }, ErrInvalidFeeRate},
		{"zero_kdf_timeout", func(c *Config) { c.KDFTimeout = 0 }, ErrInvalidKDFTimeout},
		{"rpc_url_scheme", func(c *Config) { c.RPCURL = "ftp://node:1" }, ErrInvalidRPCURL},
		{"rpc_url_host", func(c *Config) { c.RPCURL = "http://" }, ErrInvalidRPCURL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigTestnetChains(t *testing.T) {
	for _, network := range []string{"testnet", "regtest"} {
		cfg := DefaultConfig()
		cfg.Network = network
		cfg.Chain = "TBTC"
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", network, err)
		}
	}
}

func TestValidateConfigLogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "Warn", "error"} {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with loglevel %q: %v", level, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

func TestDataDirPaths(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{ConfigPath("/home/user/.libwallet"), filepath.Join("/home/user/.libwallet", "config")},
		{ConfigPath("/foo/"), filepath.Join("/foo", "config")},
		{KeystorePath("/foo"), filepath.Join("/foo", "keystores.db")},
		{SealedSeedPath("/foo"), filepath.Join("/foo", "seed.sealed")},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Data directory lock
// ---------------------------------------------------------------------------

func TestLockDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	l1, err := LockDataDir(dir)
	if err != nil {
		t.Fatalf("LockDataDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "libwallet.lock")); err != nil {
		t.Errorf("lock file not created: %v", err)
	}

	if runtime.GOOS != "windows" {
		if _, err := LockDataDir(dir); !errors.Is(err, ErrDataDirLocked) {
			t.Errorf("second LockDataDir: got %v, want ErrDataDirLocked", err)
		}
	}

	if err := l1.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := l1.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}

	l2, err := LockDataDir(dir)
	if err != nil {
		t.Fatalf("LockDataDir after release: %v", err)
	}
	_ = l2.Close()
}

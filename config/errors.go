// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidChain indicates the chain ticker is not in the registry.
	ErrInvalidChain = errors.New("config: unknown chain ticker")

	// ErrChainNetworkMismatch indicates a testnet chain configured for mainnet or the reverse.
	ErrChainNetworkMismatch = errors.New("config: chain does not belong to the configured network")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrInvalidFeeRate indicates the fee rate is not a positive integer.
	ErrInvalidFeeRate = errors.New("config: fee rate must be a positive integer")

	// ErrInvalidKDFTimeout indicates the KDF timeout is not a positive duration.
	ErrInvalidKDFTimeout = errors.New("config: kdf timeout must be a positive duration")

	// ErrInvalidRPCURL indicates the RPC URL is malformed.
	ErrInvalidRPCURL = errors.New("config: invalid rpc url")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrDataDirLocked indicates another process holds the data directory lock.
	ErrDataDirLocked = errors.New("config: data directory is locked by another process")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")
)

// Package chain holds the static per-chain registry: network version bytes,
// the default BIP44 derivation path template, dust threshold and the
// signature-hash scheme used when spending P2PKH outputs.
//
// Every supported chain is one row in the registry. Shared code selects
// behavior by reading the row, never by switching on the ticker.
package chain

import (
	"fmt"
	"strings"
)

// Curve identifies the elliptic curve a chain family derives keys on.
type Curve string

// CurveSecp256k1 is the only curve currently in scope.
const CurveSecp256k1 Curve = "secp256k1"

// SigScheme selects how per-input signature hashes are computed.
type SigScheme int

const (
	// SigHashLegacy is the original Bitcoin SIGHASH_ALL digest (hash type 0x01).
	SigHashLegacy SigScheme = iota

	// SigHashForkID is the BIP143-style replay-protected digest used by
	// Bitcoin Cash and Bitcoin SV (hash type SIGHASH_ALL|FORKID = 0x41).
	SigHashForkID
)

// String returns a short name for the scheme.
func (s SigScheme) String() string {
	switch s {
	case SigHashLegacy:
		return "legacy"
	case SigHashForkID:
		return "forkid"
	default:
		return "unknown"
	}
}

// AddressFormat selects one of the encodings a chain defines for a key.
type AddressFormat int

const (
	// FormatP2PKH is the Base58Check pay-to-public-key-hash address, or the
	// compressed WIF encoding when used for private keys.
	FormatP2PKH AddressFormat = iota

	// FormatP2WPKH is the bech32 native segwit address. Display only: the
	// transaction builder never spends from it.
	FormatP2WPKH
)

// String returns a short name for the format.
func (f AddressFormat) String() string {
	switch f {
	case FormatP2PKH:
		return "p2pkh"
	case FormatP2WPKH:
		return "p2wpkh"
	default:
		return "unknown"
	}
}

// ParseAddressFormat maps a user supplied name to an AddressFormat.
func ParseAddressFormat(s string) (AddressFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "p2pkh", "legacy":
		return FormatP2PKH, nil
	case "p2wpkh", "segwit", "bech32":
		return FormatP2WPKH, nil
	default:
		return 0, fmt.Errorf("chain: unknown address format %q", s)
	}
}

// Params describes one chain. Params values are read-only after init.
type Params struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Net    string `json:"net"` // "mainnet" or "testnet"

	Curve     Curve     `json:"curve"`
	SigScheme SigScheme `json:"sig_scheme"`

	Purpose  uint32 `json:"purpose"`
	CoinType uint32 `json:"coin_type"`

	PubKeyHashAddrID byte   `json:"pubkey_hash_addr_id"`
	ScriptHashAddrID byte   `json:"script_hash_addr_id"`
	PrivateKeyID     byte   `json:"private_key_id"`
	Bech32HRPSegwit  string `json:"bech32_hrp,omitempty"` // empty: no segwit format

	DustThreshold uint64 `json:"dust_threshold"` // smallest-unit
}

// IsMainNet reports whether the params describe a production network.
func (p *Params) IsMainNet() bool {
	return p.Net == "mainnet"
}

// SupportsFormat reports whether the chain defines the given address format.
func (p *Params) SupportsFormat(f AddressFormat) bool {
	switch f {
	case FormatP2PKH:
		return true
	case FormatP2WPKH:
		return p.Bech32HRPSegwit != ""
	default:
		return false
	}
}

// PathTemplate returns the default derivation path template, with the
// variable components spelled out:
//
//	m/44'/0'/{account}'/{change}/{index}
func (p *Params) PathTemplate() string {
	return fmt.Sprintf("m/%d'/%d'/{account}'/{change}/{index}", p.Purpose, p.CoinType)
}

// DefaultPath returns the canonical first receive path, account 0 index 0.
func (p *Params) DefaultPath() string {
	return p.PathFor(0, 0, 0)
}

// PathFor renders the template for a concrete account, change and index.
func (p *Params) PathFor(account, change, index uint32) string {
	return fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", p.Purpose, p.CoinType, account, change, index)
}

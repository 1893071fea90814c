// Package address converts secp256k1 keys into chain-specific strings.
//
// The P2PKH pipeline is:
//
//	SHA-256(pubkey) -> RIPEMD-160 -> version || hash160 -> || SHA-256d[:4] -> Base58
//
// Private keys use the same Base58Check framing with the chain's WIF version
// byte and a trailing 0x01 compression flag.
package address

import (
	"fmt"
	"math/big"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/bitfsorg/libwallet-go/chain"
)

const (
	// CompressedPubKeyLen is the length of a SEC1 compressed public key.
	CompressedPubKeyLen = 33

	// UncompressedPubKeyLen is the length of a SEC1 uncompressed public key.
	UncompressedPubKeyLen = 65

	// PrivateKeyLen is the length of a raw secp256k1 private key.
	PrivateKeyLen = 32

	// compressFlag marks a WIF payload as belonging to a compressed public key.
	compressFlag = 0x01

	// witnessVersion0 is the only segwit version the encoder produces.
	witnessVersion0 = 0x00
)

// Encode derives the address for publicKey in the given format.
func Encode(publicKey []byte, params *chain.Params, format chain.AddressFormat) (string, error) {
	if params == nil {
		return "", ErrNilParams
	}
	if !params.SupportsFormat(format) {
		return "", fmt.Errorf("%w: %s on %s", ErrUnsupportedFormat, format, params.Ticker)
	}
	if err := validatePublicKey(publicKey); err != nil {
		return "", err
	}

	switch format {
	case chain.FormatP2PKH:
		return CheckEncode(params.PubKeyHashAddrID, Hash160(publicKey)), nil
	case chain.FormatP2WPKH:
		if len(publicKey) != CompressedPubKeyLen {
			return "", fmt.Errorf("%w: segwit requires a compressed key", ErrInvalidPublicKey)
		}
		return encodeSegwit(params.Bech32HRPSegwit, Hash160(publicKey))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// EncodePrivateKey returns the compressed WIF string for a raw private key.
// WIF carries no script type, so every format the chain supports yields the
// same string; unsupported formats are rejected.
func EncodePrivateKey(privateKey []byte, params *chain.Params, format chain.AddressFormat) (string, error) {
	if params == nil {
		return "", ErrNilParams
	}
	if !params.SupportsFormat(format) {
		return "", fmt.Errorf("%w: %s on %s", ErrUnsupportedFormat, format, params.Ticker)
	}
	if err := validatePrivateKey(privateKey); err != nil {
		return "", err
	}

	payload := make([]byte, 0, PrivateKeyLen+1)
	payload = append(payload, privateKey...)
	payload = append(payload, compressFlag)
	return CheckEncode(params.PrivateKeyID, payload), nil
}

// DecodeWIF parses a WIF string for the given chain. It returns the raw
// 32-byte key and whether the key is flagged as compressed.
func DecodeWIF(wif string, params *chain.Params) ([]byte, bool, error) {
	if params == nil {
		return nil, false, ErrNilParams
	}
	version, payload, err := CheckDecode(wif)
	if err != nil {
		return nil, false, err
	}
	if version != params.PrivateKeyID {
		return nil, false, fmt.Errorf("%w: WIF version 0x%02x is not %s", ErrInvalidPrivateKey, version, params.Ticker)
	}

	var compressed bool
	switch {
	case len(payload) == PrivateKeyLen+1 && payload[PrivateKeyLen] == compressFlag:
		compressed = true
		payload = payload[:PrivateKeyLen]
	case len(payload) == PrivateKeyLen:
	default:
		return nil, false, fmt.Errorf("%w: WIF payload length %d", ErrInvalidPrivateKey, len(payload))
	}

	if err := validatePrivateKey(payload); err != nil {
		return nil, false, err
	}
	return payload, compressed, nil
}

func encodeSegwit(hrp string, program []byte) (string, error) {
	conv, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("address: bech32 convert: %w", err)
	}
	data := make([]byte, 0, len(conv)+1)
	data = append(data, witnessVersion0)
	data = append(data, conv...)
	addr, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", fmt.Errorf("address: bech32 encode: %w", err)
	}
	return addr, nil
}

func validatePublicKey(pub []byte) error {
	if len(pub) != CompressedPubKeyLen && len(pub) != UncompressedPubKeyLen {
		return fmt.Errorf("%w: length %d", ErrInvalidPublicKey, len(pub))
	}
	if _, err := ec.ParsePubKey(pub); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return nil
}

func validatePrivateKey(priv []byte) error {
	if len(priv) != PrivateKeyLen {
		return fmt.Errorf("%w: length %d", ErrInvalidPrivateKey, len(priv))
	}
	k := new(big.Int).SetBytes(priv)
	if k.Sign() == 0 || k.Cmp(ec.S256().N) >= 0 {
		return fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	return nil
}

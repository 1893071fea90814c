package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/bitfsorg/libwallet-go/chain"
)

// Hash160Len is the length of a public key or script hash.
const Hash160Len = 20

// P2PKHScript returns OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != Hash160Len {
		return nil, fmt.Errorf("%w: pubkey hash must be %d bytes", ErrInvalidAddress, Hash160Len)
	}
	s := &script.Script{}
	*s = append(*s, script.OpDUP, script.OpHASH160)
	if err := s.AppendPushData(pubKeyHash); err != nil {
		return nil, fmt.Errorf("address: push hash: %w", err)
	}
	*s = append(*s, script.OpEQUALVERIFY, script.OpCHECKSIG)
	return []byte(*s), nil
}

// P2SHScript returns OP_HASH160 <hash> OP_EQUAL.
func P2SHScript(scriptHash []byte) ([]byte, error) {
	if len(scriptHash) != Hash160Len {
		return nil, fmt.Errorf("%w: script hash must be %d bytes", ErrInvalidAddress, Hash160Len)
	}
	s := &script.Script{}
	*s = append(*s, script.OpHASH160)
	if err := s.AppendPushData(scriptHash); err != nil {
		return nil, fmt.Errorf("address: push hash: %w", err)
	}
	*s = append(*s, script.OpEQUAL)
	return []byte(*s), nil
}

// witnessScript returns OP_0 <program>.
func witnessScript(program []byte) ([]byte, error) {
	s := &script.Script{}
	*s = append(*s, script.Op0)
	if err := s.AppendPushData(program); err != nil {
		return nil, fmt.Errorf("address: push witness program: %w", err)
	}
	return []byte(*s), nil
}

// PublicKeyScript returns the P2PKH locking script that pays to publicKey.
func PublicKeyScript(publicKey []byte) ([]byte, error) {
	if err := validatePublicKey(publicKey); err != nil {
		return nil, err
	}
	return P2PKHScript(Hash160(publicKey))
}

// DecodeToScript decodes a destination address for the given chain and
// returns the locking script that pays to it. Base58Check P2PKH and P2SH
// addresses are accepted on every chain; bech32 v0 addresses only where the
// chain defines a segwit HRP.
func DecodeToScript(addr string, params *chain.Params) ([]byte, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	if params.Bech32HRPSegwit != "" && strings.HasPrefix(strings.ToLower(addr), params.Bech32HRPSegwit+"1") {
		return decodeSegwit(addr, params)
	}

	version, payload, err := CheckDecode(addr)
	if err != nil {
		return nil, err
	}
	if len(payload) != Hash160Len {
		return nil, fmt.Errorf("%w: payload length %d", ErrInvalidAddress, len(payload))
	}

	switch version {
	case params.PubKeyHashAddrID:
		return P2PKHScript(payload)
	case params.ScriptHashAddrID:
		return P2SHScript(payload)
	default:
		return nil, fmt.Errorf("%w: version 0x%02x is not %s", ErrInvalidAddress, version, params.Ticker)
	}
}

func decodeSegwit(addr string, params *chain.Params) ([]byte, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		var ce bech32.ErrInvalidChecksum
		if errors.As(err, &ce) {
			return nil, fmt.Errorf("%w: %w", ErrChecksumMismatch, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if hrp != params.Bech32HRPSegwit {
		return nil, fmt.Errorf("%w: hrp %q is not %s", ErrInvalidAddress, hrp, params.Ticker)
	}
	if len(data) < 1 || data[0] != witnessVersion0 {
		return nil, fmt.Errorf("%w: only witness version 0 is supported", ErrInvalidAddress)
	}
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(program) != Hash160Len && len(program) != 32 {
		return nil, fmt.Errorf("%w: witness program length %d", ErrInvalidAddress, len(program))
	}
	return witnessScript(program)
}

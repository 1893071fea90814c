package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not one of 128, 160, 192, 224 or 256.
	ErrInvalidEntropy = errors.New("wallet: entropy bits must be a multiple of 32 between 128 and 256")

	// ErrInvalidSeed indicates the seed is not a 64-byte BIP39 seed.
	ErrInvalidSeed = errors.New("wallet: invalid seed")

	// ErrInvalidPath indicates a malformed derivation path or an out-of-range segment.
	ErrInvalidPath = errors.New("wallet: invalid derivation path")

	// ErrUnsupportedCurve indicates the chain derives keys on a curve other than secp256k1.
	ErrUnsupportedCurve = errors.New("wallet: unsupported curve")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")

	// ErrNilChain indicates no chain params were supplied.
	ErrNilChain = errors.New("wallet: chain params are nil")

	// ErrDecryptionFailed indicates wrong password or corrupted sealed data.
	ErrDecryptionFailed = errors.New("wallet: decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates the checksum inside a sealed secret does not match.
	ErrChecksumMismatch = errors.New("wallet: secret checksum mismatch")
)

package address

import "errors"

var (
	// ErrUnsupportedFormat indicates the chain does not define the requested encoding.
	ErrUnsupportedFormat = errors.New("address: format not supported by chain")

	// ErrInvalidPublicKey indicates the bytes are not a valid secp256k1 public key.
	ErrInvalidPublicKey = errors.New("address: invalid public key")

	// ErrInvalidPrivateKey indicates the bytes are not a valid 32-byte secp256k1 scalar.
	ErrInvalidPrivateKey = errors.New("address: invalid private key")

	// ErrChecksumMismatch indicates the trailing 4-byte checksum does not match the payload.
	ErrChecksumMismatch = errors.New("address: checksum mismatch")

	// ErrInvalidAddress indicates the string cannot be decoded for the target chain.
	ErrInvalidAddress = errors.New("address: invalid address for chain")

	// ErrNilParams indicates no chain params were supplied.
	ErrNilParams = errors.New("address: chain params are nil")
)

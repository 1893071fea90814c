package address

import (
	"bytes"
	"fmt"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/mr-tron/base58"
)

// ChecksumLen is the number of double-SHA-256 bytes appended by Base58Check.
const ChecksumLen = 4

// Hash160 returns RIPEMD-160(SHA-256(b)).
func Hash160(b []byte) []byte {
	return bsvhash.Ripemd160(bsvhash.Sha256(b))
}

// checksum returns the first 4 bytes of SHA-256(SHA-256(b)).
func checksum(b []byte) []byte {
	return bsvhash.Sha256d(b)[:ChecksumLen]
}

// CheckEncode prepends version to payload, appends the double-SHA-256
// checksum of the versioned payload and Base58-encodes the result.
func CheckEncode(version byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+ChecksumLen)
	buf = append(buf, version)
	buf = append(buf, payload...)
	buf = append(buf, checksum(buf)...)
	return base58.Encode(buf)
}

// CheckDecode reverses CheckEncode, verifying the checksum.
func CheckDecode(s string) (version byte, payload []byte, err error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(raw) < 1+ChecksumLen {
		return 0, nil, fmt.Errorf("%w: decoded length %d", ErrInvalidAddress, len(raw))
	}
	body := raw[:len(raw)-ChecksumLen]
	if !bytes.Equal(checksum(body), raw[len(raw)-ChecksumLen:]) {
		return 0, nil, ErrChecksumMismatch
	}
	return body[0], body[1:], nil
}

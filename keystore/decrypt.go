package keystore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/crypto/sha3"
)

const (
	// KeyLen is the length of the decrypted secp256k1 private key.
	KeyLen = 32

	// minDKLen covers the 16-byte encryption and 16-byte MAC sub-keys.
	minDKLen = 32

	// Upper bounds on attacker-controlled KDF parameters. Every real
	// keystore sits far below them.
	maxDKLen        = 64
	maxScryptN      = 1 << 20
	maxScryptP      = 16
	maxScryptMemory = 1 << 30 // bytes, 128*r*n
	maxPBKDF2Iter   = 10_000_000

	ivLen  = aes.BlockSize
	macLen = 32
)

// Decrypt recovers the raw private key from ks.
func Decrypt(ks *Keystore, password string) ([]byte, error) {
	if ks == nil {
		return nil, fmt.Errorf("%w: keystore", ErrNilParam)
	}
	c := &ks.Crypto

	if c.Cipher != CipherAES128CTR {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCipher, c.Cipher)
	}
	ciphertext, err := decodeHex("ciphertext", c.CipherText)
	if err != nil {
		return nil, err
	}
	iv, err := decodeHex("iv", c.CipherParams.IV)
	if err != nil {
		return nil, err
	}
	if len(iv) != ivLen {
		return nil, fmt.Errorf("%w: iv length %d", ErrCorruptKeystore, len(iv))
	}
	mac, err := decodeHex("mac", c.MAC)
	if err != nil {
		return nil, err
	}
	if len(mac) != macLen {
		return nil, fmt.Errorf("%w: mac length %d", ErrCorruptKeystore, len(mac))
	}

	// 1. key-encryption material
	derived, err := deriveKey(c, []byte(password))
	if err != nil {
		return nil, err
	}

	// 2-3. MAC sub-key, verified before touching the ciphertext
	if subtle.ConstantTimeCompare(computeMAC(derived[16:32], ciphertext), mac) != 1 {
		return nil, ErrInvalidPassword
	}

	// 4. AES-128-CTR with the encryption sub-key
	key, err := aesCTR(derived[:16], iv, ciphertext)
	if err != nil {
		return nil, err
	}

	// 5.
	if len(key) != KeyLen {
		return nil, fmt.Errorf("%w: decrypted key is %d bytes", ErrCorruptKeystore, len(key))
	}
	return key, nil
}

// DecryptContext runs Decrypt off the caller's goroutine so a slow KDF can
// be abandoned. On cancellation it returns ctx.Err() and no key material.
func DecryptContext(ctx context.Context, ks *Keystore, password string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		key []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		key, err := Decrypt(ks, password)
		done <- result{key: key, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.key, r.err
	}
}

func deriveKey(c *Crypto, password []byte) ([]byte, error) {
	if err := checkKDFParams(c); err != nil {
		return nil, err
	}
	p := c.KDFParams
	salt, err := decodeHex("salt", p.Salt)
	if err != nil {
		return nil, err
	}

	if c.KDF == KDFScrypt {
		derived, err := scrypt.Key(password, salt, p.N, p.R, p.P, p.DKLen)
		if err != nil {
			return nil, fmt.Errorf("%w: scrypt: %w", ErrCorruptKeystore, err)
		}
		return derived, nil
	}
	return pbkdf2.Key(password, salt, p.C, p.DKLen, sha256.New), nil
}

// checkKDFParams bounds the cost and length fields before any KDF runs.
func checkKDFParams(c *Crypto) error {
	p := c.KDFParams
	if p.DKLen < minDKLen || p.DKLen > maxDKLen {
		return fmt.Errorf("%w: dklen %d outside [%d, %d]", ErrCorruptKeystore, p.DKLen, minDKLen, maxDKLen)
	}

	switch c.KDF {
	case KDFScrypt:
		if p.N <= 1 || p.N > maxScryptN || p.N&(p.N-1) != 0 ||
			p.R <= 0 || p.R > maxScryptMemory/(128*p.N) ||
			p.P <= 0 || p.P > maxScryptP {
			return fmt.Errorf("%w: scrypt params n=%d r=%d p=%d", ErrCorruptKeystore, p.N, p.R, p.P)
		}
		return nil

	case KDFPBKDF2:
		if p.PRF != PRFHmacSHA256 {
			return fmt.Errorf("%w: pbkdf2 prf %q", ErrUnsupportedKDF, p.PRF)
		}
		if p.C <= 0 || p.C > maxPBKDF2Iter {
			return fmt.Errorf("%w: pbkdf2 iterations %d", ErrCorruptKeystore, p.C)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedKDF, c.KDF)
	}
}

func computeMAC(macKey, ciphertext []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(macKey)
	h.Write(ciphertext)
	return h.Sum(nil)
}

// aesCTR encrypts or decrypts; CTR mode is symmetric.
func aesCTR(key, iv, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keystore: AES cipher creation failed: %w", err)
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

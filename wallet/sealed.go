package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// SealVersion is the leading byte of every sealed secret.
const SealVersion = 0x01

const (
	saltLen     = 16
	nonceLen    = 12
	checksumLen = 4
	keyLen      = 32

	// version(1) || time(4) || memory(4) || threads(1) || salt || nonce
	headerLen = 1 + 4 + 4 + 1 + saltLen + nonceLen
)

// Argon2Params are the Argon2id cost parameters used to seal a secret.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// Upper bounds on the header's cost fields. Open reads them before the
// header is authenticated.
const (
	maxArgon2Time   = 16
	maxArgon2Memory = 1 << 20 // KiB
)

func (p Argon2Params) valid() bool {
	return p.Time > 0 && p.Time <= maxArgon2Time &&
		p.Memory > 0 && p.Memory <= maxArgon2Memory &&
		p.Threads > 0
}

var (
	// DefaultArgon2Params are used for secrets written to disk.
	DefaultArgon2Params = Argon2Params{Time: 3, Memory: 64 * 1024, Threads: 4}

	// LightArgon2Params trade strength for speed; tests use them.
	LightArgon2Params = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1}
)

// Seal encrypts secret (a mnemonic or seed) under password with Argon2id and
// AES-256-GCM. The cost parameters are stored in the header so Open does not
// need them.
//
//	version || time || memory || threads || salt || nonce || GCM(secret || SHA256(secret)[:4])
func Seal(secret []byte, password string, params Argon2Params) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("wallet: empty secret")
	}
	if !params.valid() {
		return nil, fmt.Errorf("wallet: invalid argon2 params %+v", params)
	}

	header := make([]byte, headerLen)
	header[0] = SealVersion
	binary.BigEndian.PutUint32(header[1:5], params.Time)
	binary.BigEndian.PutUint32(header[5:9], params.Memory)
	header[9] = params.Threads
	if _, err := rand.Read(header[10:]); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate salt and nonce: %w", err)
	}
	salt := header[10 : 10+saltLen]
	nonce := header[10+saltLen:]

	gcm, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(secret)
	plaintext := make([]byte, 0, len(secret)+checksumLen)
	plaintext = append(plaintext, secret...)
	plaintext = append(plaintext, sum[:checksumLen]...)

	// The header is authenticated as additional data.
	out := make([]byte, headerLen, headerLen+len(plaintext)+gcm.Overhead())
	copy(out, header)
	return gcm.Seal(out, nonce, plaintext, header), nil
}

// Open reverses Seal.
func Open(sealed []byte, password string) ([]byte, error) {
	if len(sealed) < headerLen+checksumLen || sealed[0] != SealVersion {
		return nil, ErrDecryptionFailed
	}
	header := sealed[:headerLen]
	params := Argon2Params{
		Time:    binary.BigEndian.Uint32(header[1:5]),
		Memory:  binary.BigEndian.Uint32(header[5:9]),
		Threads: header[9],
	}
	if !params.valid() {
		return nil, ErrDecryptionFailed
	}
	salt := header[10 : 10+saltLen]
	nonce := header[10+saltLen:]

	gcm, err := newGCM(password, salt, params)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := gcm.Open(nil, nonce, sealed[headerLen:], header)
	if err != nil || len(plaintext) < checksumLen {
		return nil, ErrDecryptionFailed
	}

	secret := plaintext[:len(plaintext)-checksumLen]
	sum := sha256.Sum256(secret)
	if subtle.ConstantTimeCompare(sum[:checksumLen], plaintext[len(plaintext)-checksumLen:]) != 1 {
		return nil, ErrChecksumMismatch
	}
	return secret, nil
}

func newGCM(password string, salt []byte, params Argon2Params) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, keyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wallet: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("wallet: GCM creation failed: %w", err)
	}
	return gcm, nil
}

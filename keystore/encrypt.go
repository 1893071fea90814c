package keystore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

// ScryptParams are the cost parameters used by Encrypt.
type ScryptParams struct {
	N int
	R int
	P int
}

var (
	// StandardScryptParams match the common wallet default (N=2^18).
	StandardScryptParams = ScryptParams{N: 1 << 18, R: 8, P: 1}

	// LightScryptParams are fast enough for tests and low-power devices.
	LightScryptParams = ScryptParams{N: 1 << 12, R: 8, P: 6}
)

const saltLen = 32

// Encrypt seals a 32-byte private key under password with scrypt and
// AES-128-CTR, producing a version 3 keystore.
func Encrypt(privateKey []byte, password string, params ScryptParams) (*Keystore, error) {
	if len(privateKey) != KeyLen {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(privateKey))
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate salt: %w", err)
	}
	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate iv: %w", err)
	}

	derived, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, minDKLen)
	if err != nil {
		return nil, fmt.Errorf("keystore: scrypt: %w", err)
	}
	ciphertext, err := aesCTR(derived[:16], iv, privateKey)
	if err != nil {
		return nil, err
	}

	return &Keystore{
		Version: Version,
		ID:      uuid.NewString(),
		Crypto: Crypto{
			Cipher:       CipherAES128CTR,
			CipherText:   hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{IV: hex.EncodeToString(iv)},
			KDF:          KDFScrypt,
			KDFParams: KDFParams{
				DKLen: minDKLen,
				N:     params.N,
				R:     params.R,
				P:     params.P,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(computeMAC(derived[16:32], ciphertext)),
		},
	}, nil
}

// Package keystore decrypts and produces version 3 JSON keystores
// (scrypt or pbkdf2, AES-128-CTR, Keccak-256 MAC).
//
// Decryption order:
//
//	derived = KDF(password, salt)
//	MAC     = Keccak256(derived[16:32] || ciphertext)   // must match, else ErrInvalidPassword
//	key     = AES-128-CTR(derived[:16], iv, ciphertext) // must be 32 bytes
package keystore

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Names accepted in the keystore document.
const (
	KDFScrypt       = "scrypt"
	KDFPBKDF2       = "pbkdf2"
	CipherAES128CTR = "aes-128-ctr"
	PRFHmacSHA256   = "hmac-sha256"

	// Version is the only wrapper version produced by Encrypt.
	Version = 3
)

// CipherParams holds the cipher initialization vector.
type CipherParams struct {
	IV string `json:"iv"`
}

// KDFParams covers both scrypt (n, r, p) and pbkdf2 (c, prf).
type KDFParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n,omitempty"`
	R     int    `json:"r,omitempty"`
	P     int    `json:"p,omitempty"`
	C     int    `json:"c,omitempty"`
	PRF   string `json:"prf,omitempty"`
	Salt  string `json:"salt"`
}

// Crypto is the encrypted key material section.
type Crypto struct {
	Cipher       string       `json:"cipher"`
	CipherText   string       `json:"ciphertext"`
	CipherParams CipherParams `json:"cipherparams"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

// Keystore is a version 3 keystore document. Decrypt never mutates it.
type Keystore struct {
	Version int    `json:"version,omitempty"`
	ID      string `json:"id,omitempty"`
	Address string `json:"address,omitempty"`
	Crypto  Crypto `json:"crypto"`
}

// Parse decodes either the full v3 document or a bare crypto object.
// Older files spell the section "Crypto"; both spellings are accepted.
func Parse(data []byte) (*Keystore, error) {
	var doc struct {
		Keystore
		LegacyCrypto *Crypto `json:"Crypto"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptKeystore, err)
	}

	ks := doc.Keystore
	switch {
	case ks.Crypto.Cipher != "" || ks.Crypto.KDF != "":
	case doc.LegacyCrypto != nil:
		ks.Crypto = *doc.LegacyCrypto
	default:
		var bare Crypto
		if err := json.Unmarshal(data, &bare); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptKeystore, err)
		}
		ks.Crypto = bare
	}

	if ks.Crypto.KDF == "" || ks.Crypto.CipherText == "" || ks.Crypto.MAC == "" {
		return nil, fmt.Errorf("%w: missing kdf, ciphertext or mac", ErrCorruptKeystore)
	}
	return &ks, nil
}

// Marshal renders the keystore as indented JSON.
func (ks *Keystore) Marshal() ([]byte, error) {
	return json.MarshalIndent(ks, "", "  ")
}

// decodeHex decodes a hex field, tolerating a 0x prefix.
func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptKeystore, field, err)
	}
	return b, nil
}

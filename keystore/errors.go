package keystore

import "errors"

var (
	// ErrUnsupportedKDF indicates the keystore names a KDF other than scrypt or pbkdf2.
	ErrUnsupportedKDF = errors.New("keystore: unsupported key derivation function")

	// ErrUnsupportedCipher indicates the keystore names a cipher other than aes-128-ctr.
	ErrUnsupportedCipher = errors.New("keystore: unsupported cipher")

	// ErrInvalidPassword indicates the MAC did not verify: wrong password or tampered file.
	ErrInvalidPassword = errors.New("keystore: wrong password (MAC mismatch)")

	// ErrCorruptKeystore indicates malformed fields or a decrypted key of the wrong length.
	ErrCorruptKeystore = errors.New("keystore: keystore file is corrupted")

	// ErrInvalidKey indicates the private key to encrypt is not 32 bytes.
	ErrInvalidKey = errors.New("keystore: private key must be 32 bytes")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("keystore: required parameter is nil")

	// ErrKeystoreNotFound indicates no keystore is stored under the name.
	ErrKeystoreNotFound = errors.New("keystore: not found")

	// ErrKeystoreExists indicates the name is already taken in the store.
	ErrKeystoreExists = errors.New("keystore: already exists")
)

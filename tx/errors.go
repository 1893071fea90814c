package tx

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrInsufficientFunds indicates the inputs cannot cover amount plus fee.
	ErrInsufficientFunds = errors.New("tx: insufficient funds")

	// ErrInvalidAddress indicates the destination cannot be decoded into a
	// locking script for the target chain.
	ErrInvalidAddress = errors.New("tx: invalid destination address")

	// ErrSigningFailed indicates transaction signing failed.
	ErrSigningFailed = errors.New("tx: signing failed")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("tx: invalid parameters")

	// ErrUnsupportedScheme indicates the chain's signature scheme has no signer.
	ErrUnsupportedScheme = errors.New("tx: unsupported signature scheme")
)

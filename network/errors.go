package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not reach the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates the node rejected the RPC credentials.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrBroadcastRejected indicates the node refused a raw transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrInvalidUTXO indicates a provider UTXO could not be converted for spending.
	ErrInvalidUTXO = errors.New("network: invalid utxo")

	// ErrUnavailable indicates the circuit breaker is open and calls are short-circuited.
	ErrUnavailable = errors.New("network: provider unavailable")

	// ErrNotConfigured indicates no RPC endpoint was configured.
	ErrNotConfigured = errors.New("network: rpc endpoint not configured")
)

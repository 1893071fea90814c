package chain

import "errors"

var (
	// ErrUnknownChain indicates the ticker has no row in the chain registry.
	ErrUnknownChain = errors.New("chain: unknown chain ticker")
)

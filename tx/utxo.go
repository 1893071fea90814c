package tx

import (
	"encoding/hex"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libwallet-go/chain"
)

// TxIDLen is the length of a transaction ID.
const TxIDLen = 32

// UTXO is an unspent output supplied by a block explorer. The builder only
// reads it.
type UTXO struct {
	TxID         string `json:"txid"` // hex, display (big-endian) order
	Vout         uint32 `json:"vout"`
	Amount       uint64 `json:"amount"`                  // smallest unit
	ScriptPubKey []byte `json:"script_pubkey,omitempty"` // optional; defaults to the sender's P2PKH script
}

// Output is one output of a built transaction.
type Output struct {
	Script []byte `json:"script"`
	Amount uint64 `json:"amount"`
	Change bool   `json:"change"`
}

// SpendParams holds everything BuildAndSign needs. Fee, when non-zero,
// replaces the size-based estimate.
type SpendParams struct {
	PrivateKey    *ec.PrivateKey
	Destination   string
	Amount        uint64
	UTXOs         []*UTXO
	FeeRate       uint64 // smallest unit per byte; 0 means DefaultFeeRate
	Fee           uint64
	Chain         *chain.Params
	ChangeAddress string // optional; defaults to the sender's own P2PKH address
}

// SpendResult is a signed, broadcast-ready transaction.
type SpendResult struct {
	RawTxHex string    `json:"raw_tx_hex"`
	TxID     string    `json:"txid"`
	Fee      uint64    `json:"fee"`
	Change   uint64    `json:"change"`
	Inputs   int       `json:"inputs"`
	Outputs  []*Output `json:"outputs"`
}

// TotalOut sums all output values.
func (r *SpendResult) TotalOut() uint64 {
	var sum uint64
	for _, o := range r.Outputs {
		sum += o.Amount
	}
	return sum
}

// txidBytes decodes a display-order txid into the internal byte order used
// on the wire.
func txidBytes(txid string) ([]byte, error) {
	b, err := hex.DecodeString(txid)
	if err != nil {
		return nil, fmt.Errorf("%w: txid %q: %w", ErrInvalidParams, txid, err)
	}
	if len(b) != TxIDLen {
		return nil, fmt.Errorf("%w: txid must be %d bytes, got %d", ErrInvalidParams, TxIDLen, len(b))
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b, nil
}

// TxHexFromBytes converts raw transaction bytes to a hex string.
func TxHexFromBytes(rawTx []byte) string {
	return hex.EncodeToString(rawTx)
}

package network

import (
	"context"
	"fmt"
	"math"
)

var _ Provider = (*RPCClient)(nil)

// maxConf is the upper confirmation bound passed to listunspent.
const maxConf = 9999999

// coinToSat converts a whole-coin float amount, as returned by the node, to
// the smallest unit.
func coinToSat(v float64) uint64 {
	return uint64(math.Round(v * 1e8))
}

type listUnspentResult struct {
	TxID          string  `json:"txid"`
	Vout          uint32  `json:"vout"`
	Amount        float64 `json:"amount"`
	ScriptPubKey  string  `json:"scriptPubKey"`
	Address       string  `json:"address"`
	Confirmations int64   `json:"confirmations"`
}

// FetchUTXOs calls `listunspent 0 9999999 ["address"]`. The node must be
// watching the address.
func (c *RPCClient) FetchUTXOs(ctx context.Context, address string) ([]*UTXO, error) {
	params := []interface{}{0, maxConf, []string{address}}
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", params, &results); err != nil {
		return nil, err
	}

	utxos := make([]*UTXO, len(results))
	for i, r := range results {
		if r.Amount < 0 {
			return nil, fmt.Errorf("%w: negative amount for %s:%d", ErrInvalidResponse, r.TxID, r.Vout)
		}
		utxos[i] = &UTXO{
			TxID:          r.TxID,
			Vout:          r.Vout,
			Amount:        coinToSat(r.Amount),
			ScriptPubKey:  r.ScriptPubKey,
			Address:       r.Address,
			Confirmations: r.Confirmations,
		}
	}
	return utxos, nil
}

// GetBalance sums the address's unspent outputs.
func (c *RPCClient) GetBalance(ctx context.Context, address string) (*Balance, error) {
	utxos, err := c.FetchUTXOs(ctx, address)
	if err != nil {
		return nil, err
	}
	return BalanceOf(utxos), nil
}

// BroadcastTx calls `sendrawtransaction "hex"`. Node errors are wrapped
// with ErrBroadcastRejected.
func (c *RPCClient) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	params := []interface{}{rawTxHex}
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", params, &txid); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
	}
	return txid, nil
}

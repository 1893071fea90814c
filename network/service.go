// Package network connects the wallet core to a chain backend. The core
// never calls it: callers fetch UTXOs here, hand them to tx.BuildAndSign and
// broadcast the result through the same Provider.
package network

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bitfsorg/libwallet-go/tx"
)

// Provider is the minimal chain backend the wallet needs.
type Provider interface {
	// FetchUTXOs returns the unspent outputs paying to address.
	FetchUTXOs(ctx context.Context, address string) ([]*UTXO, error)

	// GetBalance returns the confirmed and unconfirmed balance of address.
	GetBalance(ctx context.Context, address string) (*Balance, error)

	// BroadcastTx submits a raw transaction and returns its txid.
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)
}

// UTXO is an unspent output as reported by a backend.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Amount        uint64 `json:"amount"`        // smallest unit
	ScriptPubKey  string `json:"script_pubkey"` // hex, may be empty
	Address       string `json:"address"`
	Confirmations int64  `json:"confirmations"`
}

// Balance splits an address balance by confirmation state.
type Balance struct {
	Confirmed   uint64 `json:"confirmed"`
	Unconfirmed uint64 `json:"unconfirmed"`
}

// Total returns the sum of confirmed and unconfirmed amounts.
func (b *Balance) Total() uint64 {
	return b.Confirmed + b.Unconfirmed
}

// BalanceOf sums a UTXO set.
func BalanceOf(utxos []*UTXO) *Balance {
	b := &Balance{}
	for _, u := range utxos {
		if u == nil {
			continue
		}
		if u.Confirmations > 0 {
			b.Confirmed += u.Amount
		} else {
			b.Unconfirmed += u.Amount
		}
	}
	return b
}

// ToTxUTXOs converts backend UTXOs into builder inputs. Script hex is
// decoded; an empty script is left empty so the builder fills in the
// sender's own P2PKH script.
func ToTxUTXOs(utxos []*UTXO) ([]*tx.UTXO, error) {
	out := make([]*tx.UTXO, 0, len(utxos))
	for i, u := range utxos {
		if u == nil {
			return nil, fmt.Errorf("%w: entry %d is nil", ErrInvalidUTXO, i)
		}
		if len(u.TxID) != tx.TxIDLen*2 {
			return nil, fmt.Errorf("%w: entry %d: txid length %d", ErrInvalidUTXO, i, len(u.TxID))
		}
		var script []byte
		if s := strings.TrimSpace(u.ScriptPubKey); s != "" {
			b, err := hex.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: script hex: %w", ErrInvalidUTXO, i, err)
			}
			script = b
		}
		out = append(out, &tx.UTXO{
			TxID:         strings.ToLower(u.TxID),
			Vout:         u.Vout,
			Amount:       u.Amount,
			ScriptPubKey: script,
		})
	}
	return out, nil
}

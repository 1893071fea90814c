// Package tx assembles and signs single-key P2PKH spends for every chain in
// the registry. Inputs are spent in the order supplied; the builder does no
// coin selection and no network I/O.
package tx

import (
	"bytes"
	"fmt"
	"math"

	"github.com/bitfsorg/libwallet-go/address"
)

// BuildAndSign builds a transaction paying Amount to Destination from all
// supplied UTXOs, adds change back to the sender when it clears the chain's
// dust threshold, and signs every input with the chain family's signer.
func BuildAndSign(params *SpendParams) (*SpendResult, error) {
	if err := validateSpend(params); err != nil {
		return nil, err
	}
	ch := params.Chain

	// 1-2. fee and pre-flight funds check, before anything is built.
	var total uint64
	for _, u := range params.UTXOs {
		if total > maxAmount-u.Amount {
			return nil, fmt.Errorf("%w: input total exceeds %d", ErrInvalidParams, uint64(maxAmount))
		}
		total += u.Amount
	}
	fee := params.Fee
	if fee == 0 {
		fee = EstimateFee(EstimateTxSize(len(params.UTXOs), estimateOutputs), params.FeeRate)
	}
	if params.Amount > math.MaxUint64-fee || total < params.Amount+fee {
		return nil, fmt.Errorf("%w: need %d + fee %d, have %d",
			ErrInsufficientFunds, params.Amount, fee, total)
	}

	destScript, err := address.DecodeToScript(params.Destination, ch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	signer, err := signerFor(ch)
	if err != nil {
		return nil, err
	}

	ownScript, err := BuildP2PKHScript(params.PrivateKey.PubKey().Compressed())
	if err != nil {
		return nil, err
	}

	// 3. every UTXO, in order, with the script its signature must cover.
	prevScripts := make([][]byte, len(params.UTXOs))
	for i, u := range params.UTXOs {
		switch {
		case len(u.ScriptPubKey) == 0:
			prevScripts[i] = ownScript
		case bytes.Equal(u.ScriptPubKey, ownScript):
			prevScripts[i] = u.ScriptPubKey
		default:
			return nil, fmt.Errorf("%w: utxo[%d] is not locked to the signing key", ErrInvalidParams, i)
		}
	}

	// 4. destination, then change if it is not dust.
	outputs := []*Output{{Script: destScript, Amount: params.Amount}}
	change := total - params.Amount - fee
	if change >= ch.DustThreshold && change > 0 {
		changeScript := ownScript
		if params.ChangeAddress != "" {
			changeScript, err = address.DecodeToScript(params.ChangeAddress, ch)
			if err != nil {
				return nil, fmt.Errorf("%w: change: %w", ErrInvalidAddress, err)
			}
		}
		outputs = append(outputs, &Output{Script: changeScript, Amount: change, Change: true})
	} else {
		fee += change
		change = 0
	}

	// 5-6. sign after outputs are final, then serialize.
	rawHex, txid, err := signer.sign(params.UTXOs, prevScripts, outputs, params.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &SpendResult{
		RawTxHex: rawHex,
		TxID:     txid,
		Fee:      fee,
		Change:   change,
		Inputs:   len(params.UTXOs),
		Outputs:  outputs,
	}, nil
}

// maxAmount is the largest value an output can carry on the wire, where
// amounts are signed 64-bit integers.
const maxAmount = math.MaxInt64

func validateSpend(params *SpendParams) error {
	if params == nil {
		return fmt.Errorf("%w: params", ErrNilParam)
	}
	if params.PrivateKey == nil {
		return fmt.Errorf("%w: private key", ErrNilParam)
	}
	if params.Chain == nil {
		return fmt.Errorf("%w: chain", ErrNilParam)
	}
	if params.Amount == 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidParams)
	}
	if params.Amount < params.Chain.DustThreshold {
		return fmt.Errorf("%w: amount %d below dust threshold %d",
			ErrInvalidParams, params.Amount, params.Chain.DustThreshold)
	}
	if params.Amount > maxAmount || params.Fee > maxAmount {
		return fmt.Errorf("%w: amount or fee exceeds %d", ErrInvalidParams, uint64(maxAmount))
	}
	if len(params.UTXOs) == 0 {
		return fmt.Errorf("%w: no utxos", ErrInvalidParams)
	}
	for i, u := range params.UTXOs {
		if u == nil {
			return fmt.Errorf("%w: utxo[%d]", ErrNilParam, i)
		}
		if u.Amount > maxAmount {
			return fmt.Errorf("%w: utxo[%d] amount %d exceeds %d", ErrInvalidParams, i, u.Amount, uint64(maxAmount))
		}
		if _, err := txidBytes(u.TxID); err != nil {
			return fmt.Errorf("utxo[%d]: %w", i, err)
		}
	}
	return nil
}

package tx

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	sighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"
	"github.com/btcsuite/btcd/btcec/v2"
	btchash "github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/libwallet-go/address"
	"github.com/bitfsorg/libwallet-go/chain"
)

// signer fills in every input's unlocking script once outputs are final and
// returns the serialized transaction and its id.
type signer interface {
	sign(utxos []*UTXO, prevScripts [][]byte, outputs []*Output, key *ec.PrivateKey) (rawHex, txid string, err error)
}

// signerFor picks the signer from the chain row's signature scheme.
func signerFor(params *chain.Params) (signer, error) {
	switch params.SigScheme {
	case chain.SigHashLegacy:
		return legacySigner{}, nil
	case chain.SigHashForkID:
		return forkIDSigner{}, nil
	default:
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedScheme, params.SigScheme, params.Ticker)
	}
}

// legacySigner uses the original SIGHASH_ALL (0x01) digest.
type legacySigner struct{}

func (legacySigner) sign(utxos []*UTXO, prevScripts [][]byte, outputs []*Output, key *ec.PrivateKey) (string, string, error) {
	msgTx := wire.NewMsgTx(wire.TxVersion)
	for _, u := range utxos {
		raw, err := txidBytes(u.TxID)
		if err != nil {
			return "", "", err
		}
		hash, err := btchash.NewHash(raw)
		if err != nil {
			return "", "", fmt.Errorf("%w: txid: %w", ErrInvalidParams, err)
		}
		msgTx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, u.Vout), nil, nil))
	}
	for _, o := range outputs {
		msgTx.AddTxOut(wire.NewTxOut(int64(o.Amount), o.Script))
	}

	btcKey, _ := btcec.PrivKeyFromBytes(key.Serialize())
	for i := range msgTx.TxIn {
		sigScript, err := txscript.SignatureScript(msgTx, i, prevScripts[i], txscript.SigHashAll, btcKey, true)
		if err != nil {
			return "", "", fmt.Errorf("%w: input %d: %w", ErrSigningFailed, i, err)
		}
		msgTx.TxIn[i].SignatureScript = sigScript
	}

	var buf bytes.Buffer
	buf.Grow(msgTx.SerializeSize())
	if err := msgTx.Serialize(&buf); err != nil {
		return "", "", fmt.Errorf("%w: serialize: %w", ErrSigningFailed, err)
	}
	return TxHexFromBytes(buf.Bytes()), msgTx.TxHash().String(), nil
}

// forkIDSigner uses the replay-protected SIGHASH_ALL|FORKID (0x41) digest,
// which commits to each input's value.
type forkIDSigner struct{}

func (forkIDSigner) sign(utxos []*UTXO, prevScripts [][]byte, outputs []*Output, key *ec.PrivateKey) (string, string, error) {
	sdkTx := transaction.NewTransaction()
	for i, u := range utxos {
		raw, err := txidBytes(u.TxID)
		if err != nil {
			return "", "", err
		}
		hash, err := chainhash.NewHash(raw)
		if err != nil {
			return "", "", fmt.Errorf("%w: txid: %w", ErrInvalidParams, err)
		}
		sdkTx.AddInput(&transaction.TransactionInput{
			SourceTXID:       hash,
			SourceTxOutIndex: u.Vout,
			SequenceNumber:   transaction.DefaultSequenceNumber,
		})
		// Attach the source output so the sighash can be computed.
		sdkTx.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      u.Amount,
			LockingScript: script.NewFromBytes(prevScripts[i]),
		})
	}
	for _, o := range outputs {
		sdkTx.AddOutput(&transaction.TransactionOutput{
			Satoshis:      o.Amount,
			LockingScript: script.NewFromBytes(o.Script),
		})
	}

	pubKey := key.PubKey().Compressed()
	for i := range sdkTx.Inputs {
		sigHash, err := sdkTx.CalcInputSignatureHash(uint32(i), sighash.AllForkID)
		if err != nil {
			return "", "", fmt.Errorf("%w: input %d sighash: %w", ErrSigningFailed, i, err)
		}
		sig, err := key.Sign(sigHash)
		if err != nil {
			return "", "", fmt.Errorf("%w: input %d: %w", ErrSigningFailed, i, err)
		}

		// <sig+hashtype> <pubkey>
		sigBytes := append(sig.Serialize(), byte(sighash.AllForkID))
		unlock := &script.Script{}
		if err := unlock.AppendPushData(sigBytes); err != nil {
			return "", "", fmt.Errorf("%w: push sig: %w", ErrSigningFailed, err)
		}
		if err := unlock.AppendPushData(pubKey); err != nil {
			return "", "", fmt.Errorf("%w: push pubkey: %w", ErrSigningFailed, err)
		}
		sdkTx.Inputs[i].UnlockingScript = unlock
	}

	return sdkTx.Hex(), sdkTx.TxID().String(), nil
}

// BuildP2PKHScript creates a P2PKH locking script for a serialized public key.
// Returns the raw script bytes suitable for use as UTXO.ScriptPubKey.
func BuildP2PKHScript(pubKey []byte) ([]byte, error) {
	if len(pubKey) == 0 {
		return nil, fmt.Errorf("%w: public key", ErrNilParam)
	}
	s, err := address.PublicKeyScript(pubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	return s, nil
}

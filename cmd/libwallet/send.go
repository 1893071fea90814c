package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libwallet-go/address"
	"github.com/bitfsorg/libwallet-go/chain"
	"github.com/bitfsorg/libwallet-go/network"
	"github.com/bitfsorg/libwallet-go/tx"
)

const networkTimeout = time.Minute

func (a *app) sendCmd() *cobra.Command {
	var (
		to                          string
		amount, fee, feeRate        uint64
		account, index, changeIndex uint32
		utxosFile                   string
		broadcast                   bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Build and sign a P2PKH payment, optionally broadcasting it",
		Long: `Spend the UTXOs of one wallet address to a destination.

UTXOs come from the configured RPC backend, or from a JSON file with
--utxos-file for offline signing. The file holds an array of
{"txid", "vout", "amount", "script_pubkey"} objects, amounts in the
smallest unit and the script as hex.

Change below the chain's dust threshold is added to the fee.`,
		Example: `  libwallet send --to 1BoatSLRHtKNngkdXEeobR76b53LETtpyT --amount 50000
  libwallet send --to <addr> --amount 50000 --utxos-file utxos.json
  libwallet send --to <addr> --amount 50000 --broadcast`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" || amount == 0 {
				return fmt.Errorf("--to and --amount are required")
			}
			if !cmd.Flags().Changed("fee-rate") {
				feeRate = a.cfg.FeeRate
			}

			w, _, err := a.openWallet()
			if err != nil {
				return err
			}
			kp, err := w.DeriveKey(account, chain.ExternalChain, index)
			if err != nil {
				return err
			}
			from, err := address.Encode(kp.PublicKey.Compressed(), a.chain, chain.FormatP2PKH)
			if err != nil {
				return err
			}
			changeAddr, err := w.ChangeAddress(account, changeIndex)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), networkTimeout)
			defer cancel()

			var provider network.Provider
			if broadcast || utxosFile == "" {
				if provider, err = a.provider(); err != nil {
					return err
				}
			}

			var found []*network.UTXO
			if utxosFile != "" {
				if found, err = readUTXOFile(utxosFile); err != nil {
					return err
				}
			} else {
				if found, err = provider.FetchUTXOs(ctx, from); err != nil {
					return err
				}
			}
			utxos, err := network.ToTxUTXOs(found)
			if err != nil {
				return err
			}

			res, err := tx.BuildAndSign(&tx.SpendParams{
				PrivateKey:    kp.PrivateKey,
				Destination:   to,
				Amount:        amount,
				UTXOs:         utxos,
				FeeRate:       feeRate,
				Fee:           fee,
				Chain:         a.chain,
				ChangeAddress: changeAddr,
			})
			if err != nil {
				return err
			}
			a.log.WithFields(log.Fields{
				"txid":   res.TxID,
				"inputs": res.Inputs,
				"fee":    res.Fee,
				"change": res.Change,
			}).Info("transaction signed")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "txid:   %s\n", res.TxID)
			fmt.Fprintf(out, "from:   %s\n", from)
			fmt.Fprintf(out, "fee:    %d\n", res.Fee)
			if res.Change > 0 {
				fmt.Fprintf(out, "change: %d -> %s\n", res.Change, changeAddr)
			}
			fmt.Fprintf(out, "raw:    %s\n", res.RawTxHex)

			if !broadcast {
				return nil
			}
			txid, err := provider.BroadcastTx(ctx, res.RawTxHex)
			if err != nil {
				return err
			}
			if txid != res.TxID {
				a.log.WithFields(log.Fields{"local": res.TxID, "node": txid}).Warn("node reported a different txid")
			}
			fmt.Fprintf(out, "broadcast: %s\n", txid)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&to, "to", "", "destination address")
	f.Uint64Var(&amount, "amount", 0, "amount in the smallest unit")
	f.Uint64Var(&fee, "fee", 0, "absolute fee; overrides --fee-rate")
	f.Uint64Var(&feeRate, "fee-rate", tx.DefaultFeeRate, "fee rate per byte (default from config)")
	f.Uint32Var(&account, "account", 0, "account to spend from")
	f.Uint32Var(&index, "index", 0, "receive address index to spend from")
	f.Uint32Var(&changeIndex, "change-index", 0, "change address index")
	f.StringVar(&utxosFile, "utxos-file", "", "read UTXOs from a JSON file instead of the backend")
	f.BoolVar(&broadcast, "broadcast", false, "submit the signed transaction to the backend")
	return cmd
}

func readUTXOFile(path string) ([]*network.UTXO, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var utxos []*network.UTXO
	if err := json.Unmarshal(data, &utxos); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return utxos, nil
}

func (a *app) balanceCmd() *cobra.Command {
	var (
		addr           string
		account, index uint32
	)
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Query an address balance from the RPC backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				w, _, err := a.openWallet()
				if err != nil {
					return err
				}
				if addr, err = w.ReceiveAddress(account, index, chain.FormatP2PKH); err != nil {
					return err
				}
			}
			provider, err := a.provider()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), networkTimeout)
			defer cancel()

			bal, err := provider.GetBalance(ctx, addr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address:     %s\n", addr)
			fmt.Fprintf(out, "confirmed:   %d\n", bal.Confirmed)
			fmt.Fprintf(out, "unconfirmed: %d\n", bal.Unconfirmed)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "address", "", "address to query (default: wallet receive address)")
	cmd.Flags().Uint32Var(&account, "account", 0, "account index")
	cmd.Flags().Uint32Var(&index, "index", 0, "receive address index")
	return cmd
}

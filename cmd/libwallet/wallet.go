package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libwallet-go/address"
	"github.com/bitfsorg/libwallet-go/chain"
	"github.com/bitfsorg/libwallet-go/config"
	"github.com/bitfsorg/libwallet-go/fingerprint"
	"github.com/bitfsorg/libwallet-go/wallet"
)

var wordsToEntropy = map[int]int{
	12: wallet.Mnemonic12Words,
	15: wallet.Mnemonic15Words,
	18: wallet.Mnemonic18Words,
	21: wallet.Mnemonic21Words,
	24: wallet.Mnemonic24Words,
}

func (a *app) initCmd() *cobra.Command {
	var (
		words      int
		importMnem bool
		passphrase string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or import a mnemonic and seal its seed in the data directory",
		Long: `Create a new BIP39 mnemonic, or import one from stdin with --import, and
store the derived seed encrypted with a password (Argon2id + AES-GCM).

The mnemonic is printed once and never written to disk.`,
		Example: `  libwallet init --words 24
  echo "abandon ... about" | libwallet init --import --password-file pw.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.lockDataDir(); err != nil {
				return err
			}
			path := config.SealedSeedPath(a.cfg.DataDir)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("wallet already exists at %s (use --force to overwrite)", path)
			}

			var mnemonic string
			if importMnem {
				line, err := a.readLine()
				if err != nil {
					return err
				}
				mnemonic = strings.Join(strings.Fields(line), " ")
			} else {
				bits, ok := wordsToEntropy[words]
				if !ok {
					return fmt.Errorf("%w: %d words", wallet.ErrInvalidEntropy, words)
				}
				m, err := wallet.GenerateMnemonic(bits)
				if err != nil {
					return err
				}
				mnemonic = m
			}

			seed, err := wallet.SeedFromMnemonic(mnemonic, passphrase)
			if err != nil {
				return err
			}
			fp, err := fingerprint.FromSeed(seed)
			if err != nil {
				return err
			}

			password, err := a.readNewPassword()
			if err != nil {
				return err
			}
			sealed, err := wallet.Seal(seed, password, wallet.DefaultArgon2Params)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return err
			}
			if err := os.WriteFile(path, sealed, 0600); err != nil {
				return err
			}
			a.log.WithField("fingerprint", fp).Info("wallet sealed")

			out := cmd.OutOrStdout()
			if !importMnem {
				fmt.Fprintf(out, "mnemonic:    %s\n", mnemonic)
			}
			fmt.Fprintf(out, "fingerprint: %s\n", fp)
			fmt.Fprintf(out, "sealed seed: %s\n", path)
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", 24, "mnemonic length: 12, 15, 18, 21 or 24")
	cmd.Flags().BoolVar(&importMnem, "import", false, "read an existing mnemonic from stdin")
	cmd.Flags().StringVar(&passphrase, "bip39-passphrase", "", "optional BIP39 passphrase")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing sealed seed")
	return cmd
}

// openWallet unseals the stored seed and binds it to the configured chain.
func (a *app) openWallet() (*wallet.Wallet, []byte, error) {
	path := config.SealedSeedPath(a.cfg.DataDir)
	sealed, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("no wallet at %s: run `libwallet init` first", path)
		}
		return nil, nil, err
	}
	password, err := a.readPassword("Wallet password: ")
	if err != nil {
		return nil, nil, err
	}
	seed, err := wallet.Open(sealed, password)
	if err != nil {
		return nil, nil, err
	}
	w, err := wallet.NewWallet(seed, a.chain)
	if err != nil {
		return nil, nil, err
	}
	return w, seed, nil
}

func (a *app) deriveCmd() *cobra.Command {
	var (
		account, change, index, count uint32
		format                        string
		showWIF                       bool
		path                          string
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive addresses on the chain's default path",
		Example: `  libwallet derive --chain BTC --count 5
  libwallet derive --chain LTC --format p2wpkh
  libwallet derive --path "m/44'/0'/0'/0/7"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addrFormat, err := chain.ParseAddressFormat(format)
			if err != nil {
				return err
			}
			w, seed, err := a.openWallet()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path != "" {
				dp, err := wallet.ParseDerivationPath(path)
				if err != nil {
					return err
				}
				node, err := wallet.Derive(seed, dp)
				if err != nil {
					return err
				}
				return a.printKey(out, node.Path.String(), node.PublicKeyBytes(), node.PrivateKeyBytes(), addrFormat, showWIF)
			}

			if count == 0 {
				count = 1
			}
			for i := uint32(0); i < count; i++ {
				kp, err := w.DeriveKey(account, change, index+i)
				if err != nil {
					return err
				}
				if err := a.printKey(out, kp.Path, kp.PublicKey.Compressed(), kp.PrivateKey.Serialize(), addrFormat, showWIF); err != nil {
					return err
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Uint32Var(&account, "account", 0, "account index (hardened)")
	f.Uint32Var(&change, "change", chain.ExternalChain, "0 for receive, 1 for change")
	f.Uint32Var(&index, "index", 0, "first address index")
	f.Uint32Var(&count, "count", 1, "number of consecutive addresses")
	f.StringVar(&format, "format", "p2pkh", "address format: p2pkh or p2wpkh")
	f.BoolVar(&showWIF, "wif", false, "also print the private key in WIF")
	f.StringVar(&path, "path", "", "derive an explicit path instead of the default template")
	return cmd
}

func (a *app) printKey(out io.Writer, path string, pub, priv []byte, format chain.AddressFormat, showWIF bool) error {
	addr, err := address.Encode(pub, a.chain, format)
	if err != nil {
		return err
	}
	if !showWIF {
		_, err = fmt.Fprintf(out, "%s\t%s\n", path, addr)
		return err
	}
	wif, err := address.EncodePrivateKey(priv, a.chain, chain.FormatP2PKH)
	if err != nil {
		return err
	}
	a.log.WithField("path", path).Warn("printing private key")
	_, err = fmt.Fprintf(out, "%s\t%s\t%s\n", path, addr, wif)
	return err
}

func (a *app) fingerprintCmd() *cobra.Command {
	var (
		fromStdin  bool
		passphrase string
		showKeyID  bool
	)
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the wallet fingerprint",
		Long: `Print the deterministic fingerprint of the sealed wallet, or of a mnemonic
read from stdin with --mnemonic-stdin. Two wallets with the same
fingerprint hold the same keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var seed []byte
			if fromStdin {
				line, err := a.readLine()
				if err != nil {
					return err
				}
				seed, err = wallet.SeedFromMnemonic(strings.Join(strings.Fields(line), " "), passphrase)
				if err != nil {
					return err
				}
			} else {
				_, s, err := a.openWallet()
				if err != nil {
					return err
				}
				seed = s
			}

			fp, err := fingerprint.FromSeed(seed)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, fp)
			if showKeyID {
				root, err := wallet.DeriveMaster(seed)
				if err != nil {
					return err
				}
				id, err := fingerprint.MasterKeyID(root)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "master key id: %s\n", id)
			}
			a.log.WithField("mnemonic_stdin", fromStdin).Debug("fingerprint computed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "mnemonic-stdin", false, "read a mnemonic from stdin instead of the sealed wallet")
	cmd.Flags().StringVar(&passphrase, "bip39-passphrase", "", "BIP39 passphrase used with --mnemonic-stdin")
	cmd.Flags().BoolVar(&showKeyID, "key-id", false, "also print the BIP32 master key identifier")
	return cmd
}

func (a *app) pathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "List supported chains and their default derivation paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TICKER\tNAME\tNET\tDEFAULT PATH\tTEMPLATE\tSIGHASH\tDUST\tFORMATS")
			for _, p := range chain.All() {
				formats := []string{chain.FormatP2PKH.String()}
				if p.SupportsFormat(chain.FormatP2WPKH) {
					formats = append(formats, chain.FormatP2WPKH.String())
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					p.Ticker, p.Name, p.Net, p.DefaultPath(), p.PathTemplate(),
					p.SigScheme, p.DustThreshold, strings.Join(formats, ","))
			}
			a.log.WithFields(log.Fields{"chains": len(chain.All())}).Debug("listed chains")
			return tw.Flush()
		},
	}
}

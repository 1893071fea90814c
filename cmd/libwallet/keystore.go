package main

import (
	"context"
	"fmt"
	"os"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libwallet-go/address"
	"github.com/bitfsorg/libwallet-go/chain"
	"github.com/bitfsorg/libwallet-go/config"
	"github.com/bitfsorg/libwallet-go/keystore"
)

func (a *app) keystoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keystore",
		Short: "Manage password-encrypted single-key keystores",
	}
	cmd.AddCommand(
		a.keystoreImportCmd(),
		a.keystoreNewCmd(),
		a.keystoreListCmd(),
		a.keystoreDecryptCmd(),
		a.keystoreExportCmd(),
		a.keystoreDeleteCmd(),
	)
	return cmd
}

// openStore opens the keystore database. Writers pass lock to hold the
// data directory lock first.
func (a *app) openStore(lock bool) (*keystore.Store, error) {
	if lock {
		if err := a.lockDataDir(); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(a.cfg.DataDir, 0700); err != nil {
		return nil, err
	}
	return keystore.OpenStore(config.KeystorePath(a.cfg.DataDir))
}

// unlock decrypts ks, bounded by the configured KDF timeout.
func (a *app) unlock(ks *keystore.Keystore) ([]byte, error) {
	password, err := a.readPassword("Keystore password: ")
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.KDFTimeout)
	defer cancel()

	a.log.WithFields(log.Fields{"kdf": ks.Crypto.KDF, "timeout": a.cfg.KDFTimeout}).Debug("deriving keystore key")
	return keystore.DecryptContext(ctx, ks, password)
}

func (a *app) keystoreImportCmd() *cobra.Command {
	var (
		name   string
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a keystore JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ks, err := keystore.Parse(data)
			if err != nil {
				return err
			}
			if verify {
				priv, err := a.unlock(ks)
				if err != nil {
					return err
				}
				addr, err := keyAddress(priv, a.chain)
				if err != nil {
					return err
				}
				ks.Address = addr
			}
			if name == "" {
				name = ks.ID
			}
			if name == "" {
				return fmt.Errorf("keystore has no id: pass --name")
			}

			store, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Put(name, ks); err != nil {
				return err
			}
			a.log.WithField("name", name).Info("keystore imported")
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name to store the keystore under (default: its id)")
	cmd.Flags().BoolVar(&verify, "verify", false, "decrypt once to check the password and record the address")
	return cmd
}

func (a *app) keystoreNewCmd() *cobra.Command {
	var (
		name           string
		account, index uint32
		light          bool
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Encrypt a key derived from the sealed wallet into a new keystore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			w, _, err := a.openWallet()
			if err != nil {
				return err
			}
			kp, err := w.DeriveKey(account, chain.ExternalChain, index)
			if err != nil {
				return err
			}
			password, err := a.readNewPassword()
			if err != nil {
				return err
			}

			params := keystore.StandardScryptParams
			if light {
				params = keystore.LightScryptParams
			}
			ks, err := keystore.Encrypt(kp.PrivateKey.Serialize(), password, params)
			if err != nil {
				return err
			}
			addr, err := address.Encode(kp.PublicKey.Compressed(), a.chain, chain.FormatP2PKH)
			if err != nil {
				return err
			}
			ks.Address = addr

			store, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Put(name, ks); err != nil {
				return err
			}
			a.log.WithFields(log.Fields{"name": name, "path": kp.Path}).Info("keystore created")
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, kp.Path, addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "keystore name")
	cmd.Flags().Uint32Var(&account, "account", 0, "account index")
	cmd.Flags().Uint32Var(&index, "index", 0, "receive address index")
	cmd.Flags().BoolVar(&light, "light", false, "use cheap scrypt parameters")
	return cmd
}

func (a *app) keystoreListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keystores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(false)
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range names {
				ks, err := store.Get(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", n, ks.Crypto.KDF, ks.Address)
			}
			return nil
		},
	}
}

func (a *app) keystoreDecryptCmd() *cobra.Command {
	var (
		file    string
		showWIF bool
	)
	cmd := &cobra.Command{
		Use:   "decrypt [name]",
		Short: "Decrypt a stored keystore, or a file with --file, and print its address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := a.loadKeystore(args, file)
			if err != nil {
				return err
			}
			priv, err := a.unlock(ks)
			if err != nil {
				return err
			}
			addr, err := keyAddress(priv, a.chain)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address: %s\n", addr)
			if showWIF {
				wif, err := address.EncodePrivateKey(priv, a.chain, chain.FormatP2PKH)
				if err != nil {
					return err
				}
				a.log.Warn("printing private key")
				fmt.Fprintf(out, "wif:     %s\n", wif)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "decrypt this keystore file instead of a stored one")
	cmd.Flags().BoolVar(&showWIF, "wif", false, "print the private key in WIF")
	return cmd
}

func (a *app) keystoreExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <name>",
		Short: "Print a stored keystore as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := a.loadKeystore(args, "")
			if err != nil {
				return err
			}
			data, err := ks.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func (a *app) keystoreDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored keystore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			a.log.WithField("name", args[0]).Info("keystore deleted")
			return nil
		},
	}
}

func (a *app) loadKeystore(args []string, file string) (*keystore.Keystore, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return keystore.Parse(data)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("pass a keystore name or --file")
	}
	store, err := a.openStore(false)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Get(args[0])
}

// keyAddress returns the P2PKH address of a raw private key on params.
// Encoding the WIF first rejects out-of-range scalars.
func keyAddress(priv []byte, params *chain.Params) (string, error) {
	if _, err := address.EncodePrivateKey(priv, params, chain.FormatP2PKH); err != nil {
		return "", err
	}
	key, _ := ec.PrivateKeyFromBytes(priv)
	return address.Encode(key.PubKey().Compressed(), params, chain.FormatP2PKH)
}

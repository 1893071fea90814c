package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"

	"github.com/bitfsorg/libwallet-go/address"
	"github.com/bitfsorg/libwallet-go/chain"
)

// SeedLen is the length of a BIP39 seed. BIP32 itself accepts 16 to 64
// bytes but every seed in this module comes from a mnemonic.
const SeedLen = 64

// Node is one key in the BIP32 tree. A node owns its key material and
// keeps no reference to its parent.
type Node struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	ChainCode  []byte         `json:"-"`
	Depth      uint8          `json:"depth"`
	Path       DerivationPath `json:"path"`
	ext        *bip32.ExtendedKey
}

// PublicKeyBytes returns the 33-byte compressed public key.
func (n *Node) PublicKeyBytes() []byte {
	return n.PublicKey.Compressed()
}

// PrivateKeyBytes returns the 32-byte private scalar.
func (n *Node) PrivateKeyBytes() []byte {
	return n.PrivateKey.Serialize()
}

// ExtendedPrivateKey returns the Base58 xprv/tprv serialization.
func (n *Node) ExtendedPrivateKey() string {
	return n.ext.String()
}

// ExtendedPublicKey returns the Base58 xpub/tpub serialization.
func (n *Node) ExtendedPublicKey() (string, error) {
	pub, err := n.ext.Neuter()
	if err != nil {
		return "", fmt.Errorf("%w: neuter: %w", ErrDerivationFailed, err)
	}
	return pub.String(), nil
}

// DeriveMaster returns the depth-0 node for a seed.
func DeriveMaster(seed []byte) (*Node, error) {
	return deriveNode(seed, nil, &chaincfg.MainNet)
}

// Derive walks path from the master node of seed. The same seed and path
// always yield the same node.
func Derive(seed []byte, path DerivationPath) (*Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path, use DeriveMaster for the root", ErrInvalidPath)
	}
	return deriveNode(seed, path, &chaincfg.MainNet)
}

// DeriveForChain derives the node at the chain's default path template with
// the account, change and index components filled in.
//
//	m/44'/{coin}'/{account}'/{change}/{index}
func DeriveForChain(seed []byte, params *chain.Params, account, change, index uint32) (*Node, error) {
	if params == nil {
		return nil, ErrNilChain
	}
	if params.Curve != chain.CurveSecp256k1 {
		return nil, fmt.Errorf("%w: %s uses %s", ErrUnsupportedCurve, params.Ticker, params.Curve)
	}
	path := DerivationPath{
		{Index: params.Purpose, Hardened: true},
		{Index: params.CoinType, Hardened: true},
		{Index: account, Hardened: true},
		{Index: change},
		{Index: index},
	}
	return deriveNode(seed, path, extendedKeyNet(params))
}

func deriveNode(seed []byte, path DerivationPath, net *chaincfg.Params) (*Node, error) {
	if len(seed) != SeedLen {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidSeed, len(seed), SeedLen)
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}

	current, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: master: %w", ErrDerivationFailed, err)
	}
	for i, seg := range path {
		current, err = current.Child(seg.ChildIndex())
		if err != nil {
			return nil, fmt.Errorf("%w: depth %d: %w", ErrDerivationFailed, i+1, err)
		}
	}
	return extKeyToNode(current, path)
}

// extKeyToNode converts a BIP32 extended key to a Node.
func extKeyToNode(extKey *bip32.ExtendedKey, path DerivationPath) (*Node, error) {
	privKey, err := extKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}

	pubKey := privKey.PubKey()
	if pubKey == nil {
		return nil, fmt.Errorf("%w: failed to derive public key", ErrDerivationFailed)
	}

	owned := make(DerivationPath, len(path))
	copy(owned, path)

	return &Node{
		PrivateKey: privKey,
		PublicKey:  pubKey,
		ChainCode:  append([]byte(nil), extKey.ChainCode()...),
		Depth:      extKey.Depth(),
		Path:       owned,
		ext:        extKey,
	}, nil
}

// extendedKeyNet picks the xprv/tprv version bytes for a chain.
func extendedKeyNet(params *chain.Params) *chaincfg.Params {
	if params.IsMainNet() {
		return &chaincfg.MainNet
	}
	return &chaincfg.TestNet
}

// Wallet is a convenience wrapper binding one seed to one chain.
type Wallet struct {
	seed  []byte
	chain *chain.Params
}

// KeyPair holds a derived public/private key pair.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Path       string         `json:"path"` // Human-readable derivation path
}

// NewWallet creates a new Wallet from a BIP39 seed. The seed is copied.
func NewWallet(seed []byte, params *chain.Params) (*Wallet, error) {
	if len(seed) != SeedLen {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidSeed, len(seed), SeedLen)
	}
	if params == nil {
		return nil, ErrNilChain
	}
	if params.Curve != chain.CurveSecp256k1 {
		return nil, fmt.Errorf("%w: %s uses %s", ErrUnsupportedCurve, params.Ticker, params.Curve)
	}
	return &Wallet{
		seed:  append([]byte(nil), seed...),
		chain: params,
	}, nil
}

// Chain returns the wallet's chain params.
func (w *Wallet) Chain() *chain.Params {
	return w.chain
}

// Master returns the wallet's depth-0 node.
func (w *Wallet) Master() (*Node, error) {
	return deriveNode(w.seed, nil, extendedKeyNet(w.chain))
}

// DeriveKey derives a key pair on the chain's default path.
//
//	change: chain.ExternalChain (0) for receive, chain.InternalChain (1) for change
func (w *Wallet) DeriveKey(account, change, index uint32) (*KeyPair, error) {
	node, err := DeriveForChain(w.seed, w.chain, account, change, index)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		PrivateKey: node.PrivateKey,
		PublicKey:  node.PublicKey,
		Path:       node.Path.String(),
	}, nil
}

// ReceiveAddress returns the external-chain address at index.
func (w *Wallet) ReceiveAddress(account, index uint32, format chain.AddressFormat) (string, error) {
	kp, err := w.DeriveKey(account, chain.ExternalChain, index)
	if err != nil {
		return "", err
	}
	return address.Encode(kp.PublicKey.Compressed(), w.chain, format)
}

// ChangeAddress returns the internal-chain P2PKH address at index.
func (w *Wallet) ChangeAddress(account, index uint32) (string, error) {
	kp, err := w.DeriveKey(account, chain.InternalChain, index)
	if err != nil {
		return "", err
	}
	return address.Encode(kp.PublicKey.Compressed(), w.chain, chain.FormatP2PKH)
}

// WIF returns the compressed WIF export of the key pair on the wallet's chain.
func (w *Wallet) WIF(kp *KeyPair) (string, error) {
	return address.EncodePrivateKey(kp.PrivateKey.Serialize(), w.chain, chain.FormatP2PKH)
}

// Package fingerprint derives a short, stable identifier for a wallet's root
// key so two exports can be compared without revealing the seed.
//
//	digest      = SHA-256("libwallet-fingerprint" || root compressed pubkey || root chain code)
//	fingerprint = hex(digest[:8]) grouped as XXXX-XXXX-XXXX-XXXX
package fingerprint

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"

	"github.com/bitfsorg/libwallet-go/address"
	"github.com/bitfsorg/libwallet-go/wallet"
)

// Domain separates fingerprint digests from any other hash of the root key.
const Domain = "libwallet-fingerprint"

const (
	digestBytes = 8
	groupChars  = 4
)

// ErrNotRoot indicates a node other than the depth-0 master was supplied.
var ErrNotRoot = errors.New("fingerprint: node is not the master node")

// Fingerprint derives the fingerprint for a mnemonic and optional passphrase.
func Fingerprint(mnemonic, passphrase string) (string, error) {
	seed, err := wallet.SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return "", err
	}
	return FromSeed(seed)
}

// FromSeed derives the fingerprint for a 64-byte BIP39 seed.
func FromSeed(seed []byte) (string, error) {
	root, err := wallet.DeriveMaster(seed)
	if err != nil {
		return "", err
	}
	return FromNode(root)
}

// FromNode derives the fingerprint for a master node.
func FromNode(root *wallet.Node) (string, error) {
	if root == nil || root.Depth != 0 {
		return "", ErrNotRoot
	}

	buf := make([]byte, 0, len(Domain)+33+len(root.ChainCode))
	buf = append(buf, Domain...)
	buf = append(buf, root.PublicKeyBytes()...)
	buf = append(buf, root.ChainCode...)

	return format(bsvhash.Sha256(buf)[:digestBytes]), nil
}

// MasterKeyID returns the BIP32 key identifier fingerprint of the master
// node, HASH160(pubkey)[:4], as lowercase hex. Hardware wallets and PSBTs
// display this value.
func MasterKeyID(root *wallet.Node) (string, error) {
	if root == nil || root.Depth != 0 {
		return "", ErrNotRoot
	}
	return hex.EncodeToString(address.Hash160(root.PublicKeyBytes())[:4]), nil
}

// MasterKeyIDUint32 returns MasterKeyID as the big-endian integer BIP32
// stores in child key parent fingerprints.
func MasterKeyIDUint32(root *wallet.Node) (uint32, error) {
	if root == nil || root.Depth != 0 {
		return 0, ErrNotRoot
	}
	return binary.BigEndian.Uint32(address.Hash160(root.PublicKeyBytes())[:4]), nil
}

// Equal compares two fingerprints in constant time, ignoring case and
// grouping dashes.
func Equal(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	return subtle.ConstantTimeCompare([]byte(na), []byte(nb)) == 1
}

// Parse validates a fingerprint string and returns its canonical form.
func Parse(s string) (string, error) {
	n := normalize(s)
	raw, err := hex.DecodeString(n)
	if err != nil || len(raw) != digestBytes {
		return "", fmt.Errorf("fingerprint: malformed %q", s)
	}
	return format(raw), nil
}

func format(b []byte) string {
	h := strings.ToUpper(hex.EncodeToString(b))
	groups := make([]string, 0, len(h)/groupChars)
	for i := 0; i < len(h); i += groupChars {
		groups = append(groups, h[i:i+groupChars])
	}
	return strings.Join(groups, "-")
}

func normalize(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
}

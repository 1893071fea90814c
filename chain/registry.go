package chain

import (
	"fmt"
	"sort"
	"strings"
)

// BIP44 purpose and change-chain constants.
const (
	PurposeBIP44 = 44

	ExternalChain = 0 // receive addresses
	InternalChain = 1 // change addresses
)

// Registry rows. Callers only ever see copies returned by Lookup and All.
var (
	bitcoin = Params{
		Ticker:           "BTC",
		Name:             "Bitcoin",
		Net:              "mainnet",
		Curve:            CurveSecp256k1,
		SigScheme:        SigHashLegacy,
		Purpose:          PurposeBIP44,
		CoinType:         0,
		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
		PrivateKeyID:     0x80,
		Bech32HRPSegwit:  "bc",
		DustThreshold:    546,
	}

	bitcoinTestNet = Params{
		Ticker:           "TBTC",
		Name:             "Bitcoin Testnet",
		Net:              "testnet",
		Curve:            CurveSecp256k1,
		SigScheme:        SigHashLegacy,
		Purpose:          PurposeBIP44,
		CoinType:         1,
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		Bech32HRPSegwit:  "tb",
		DustThreshold:    546,
	}

	litecoin = Params{
		Ticker:           "LTC",
		Name:             "Litecoin",
		Net:              "mainnet",
		Curve:            CurveSecp256k1,
		SigScheme:        SigHashLegacy,
		Purpose:          PurposeBIP44,
		CoinType:         2,
		PubKeyHashAddrID: 0x30,
		ScriptHashAddrID: 0x32,
		PrivateKeyID:     0xb0,
		Bech32HRPSegwit:  "ltc",
		DustThreshold:    5460,
	}

	dogecoin = Params{
		Ticker:           "DOGE",
		Name:             "Dogecoin",
		Net:              "mainnet",
		Curve:            CurveSecp256k1,
		SigScheme:        SigHashLegacy,
		Purpose:          PurposeBIP44,
		CoinType:         3,
		PubKeyHashAddrID: 0x1e,
		ScriptHashAddrID: 0x16,
		PrivateKeyID:     0x9e,
		DustThreshold:    1000000,
	}

	dash = Params{
		Ticker:           "DASH",
		Name:             "Dash",
		Net:              "mainnet",
		Curve:            CurveSecp256k1,
		SigScheme:        SigHashLegacy,
		Purpose:          PurposeBIP44,
		CoinType:         5,
		PubKeyHashAddrID: 0x4c,
		ScriptHashAddrID: 0x10,
		PrivateKeyID:     0xcc,
		DustThreshold:    5460,
	}

	bitcoinCash = Params{
		Ticker:           "BCH",
		Name:             "Bitcoin Cash",
		Net:              "mainnet",
		Curve:            CurveSecp256k1,
		SigScheme:        SigHashForkID,
		Purpose:          PurposeBIP44,
		CoinType:         145,
		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
		PrivateKeyID:     0x80,
		DustThreshold:    546,
	}

	bitcoinSV = Params{
		Ticker:           "BSV",
		Name:             "Bitcoin SV",
		Net:              "mainnet",
		Curve:            CurveSecp256k1,
		SigScheme:        SigHashForkID,
		Purpose:          PurposeBIP44,
		CoinType:         236,
		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
		PrivateKeyID:     0x80,
		DustThreshold:    546,
	}
)

// registry maps upper-case tickers to their params.
var registry = map[string]*Params{
	bitcoin.Ticker:        &bitcoin,
	bitcoinTestNet.Ticker: &bitcoinTestNet,
	litecoin.Ticker:       &litecoin,
	dogecoin.Ticker:       &dogecoin,
	dash.Ticker:           &dash,
	bitcoinCash.Ticker:    &bitcoinCash,
	bitcoinSV.Ticker:      &bitcoinSV,
}

// Lookup returns a copy of the params registered for ticker
// (case-insensitive). Changing the copy does not affect the registry.
func Lookup(ticker string) (*Params, error) {
	if p, ok := registry[strings.ToUpper(strings.TrimSpace(ticker))]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChain, ticker)
}

// Tickers returns every registered ticker in sorted order.
func Tickers() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// All returns a copy of every registered chain sorted by ticker.
func All() []*Params {
	tickers := Tickers()
	out := make([]*Params, len(tickers))
	for i, t := range tickers {
		cp := *registry[t]
		out[i] = &cp
	}
	return out
}

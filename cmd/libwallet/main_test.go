package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libwallet-go/address"
	"github.com/bitfsorg/libwallet-go/chain"
	"github.com/bitfsorg/libwallet-go/fingerprint"
	"github.com/bitfsorg/libwallet-go/keystore"
	"github.com/bitfsorg/libwallet-go/wallet"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testPassword = "correct horse battery staple"
	testDest     = "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA"
)

type env struct {
	t      *testing.T
	dir    string
	pwFile string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	pw := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(pw, []byte(testPassword+"\n"), 0600))
	return &env{t: t, dir: dir, pwFile: pw}
}

func (e *env) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(stdin), &out, &errOut)
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(append([]string{
		"--datadir", e.dir,
		"--password-file", e.pwFile,
		"--log-level", "error",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *env) mustRun(stdin string, args ...string) string {
	e.t.Helper()
	out, err := e.run(stdin, args...)
	require.NoError(e.t, err, "libwallet %s", strings.Join(args, " "))
	return out
}

func (e *env) initWallet() {
	e.t.Helper()
	e.mustRun(testMnemonic+"\n", "init", "--import")
}

func expectedAddress(t *testing.T, ticker string, account, change, index uint32) string {
	t.Helper()
	params, err := chain.Lookup(ticker)
	require.NoError(t, err)
	seed, err := wallet.SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	node, err := wallet.DeriveForChain(seed, params, account, change, index)
	require.NoError(t, err)
	addr, err := address.Encode(node.PublicKeyBytes(), params, chain.FormatP2PKH)
	require.NoError(t, err)
	return addr
}

func TestPathsCommand(t *testing.T) {
	out := newEnv(t).mustRun("", "paths")
	assert.Contains(t, out, "TICKER")
	for _, p := range chain.All() {
		assert.Contains(t, out, p.Ticker)
	}
	assert.Contains(t, out, "m/44'/236'/0'/0/0")
	assert.Contains(t, out, "m/44'/0'/{account}'/{change}/{index}")
	assert.Contains(t, out, "forkid")
}

func TestInitImportAndFingerprint(t *testing.T) {
	e := newEnv(t)
	want, err := fingerprint.Fingerprint(testMnemonic, "")
	require.NoError(t, err)

	out := e.mustRun(testMnemonic+"\n", "init", "--import")
	assert.Contains(t, out, want)
	assert.NotContains(t, out, "abandon", "imported mnemonic must not be echoed")

	_, err = os.Stat(filepath.Join(e.dir, "seed.sealed"))
	require.NoError(t, err)

	_, err = e.run(testMnemonic+"\n", "init", "--import")
	assert.ErrorContains(t, err, "already exists")

	out = e.mustRun("", "fingerprint", "--key-id")
	assert.Contains(t, out, want)
	assert.Contains(t, out, "master key id: 73c5da0a")

	out = e.mustRun(testMnemonic+"\n", "fingerprint", "--mnemonic-stdin")
	assert.Equal(t, want+"\n", out)
}

func TestInitGenerate(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("", "init", "--words", "12")
	require.True(t, strings.HasPrefix(out, "mnemonic:"))

	line := strings.SplitN(out, "\n", 2)[0]
	mnemonic := strings.TrimSpace(strings.TrimPrefix(line, "mnemonic:"))
	assert.Len(t, strings.Fields(mnemonic), 12)
	assert.True(t, wallet.ValidateMnemonic(mnemonic))

	_, err := newEnv(t).run("", "init", "--words", "13")
	assert.ErrorIs(t, err, wallet.ErrInvalidEntropy)
}

func TestInitRejectsBadMnemonic(t *testing.T) {
	_, err := newEnv(t).run("abandon abandon abandon\n", "init", "--import")
	assert.ErrorIs(t, err, wallet.ErrInvalidMnemonic)
}

func TestDeriveCommand(t *testing.T) {
	e := newEnv(t)
	e.initWallet()

	out := e.mustRun("", "derive", "--chain", "BTC", "--count", "2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "m/44'/0'/0'/0/0\t"+expectedAddress(t, "BTC", 0, 0, 0), lines[0])
	assert.Equal(t, "m/44'/0'/0'/0/1\t"+expectedAddress(t, "BTC", 0, 0, 1), lines[1])

	out = e.mustRun("", "derive", "--chain", "BTC", "--format", "p2wpkh")
	assert.Contains(t, out, "\tbc1q")

	out = e.mustRun("", "derive", "--chain", "DOGE", "--change", "1", "--index", "3", "--wif")
	fields := strings.Fields(out)
	require.Len(t, fields, 3)
	assert.Equal(t, "m/44'/3'/0'/1/3", fields[0])
	assert.Equal(t, expectedAddress(t, "DOGE", 0, 1, 3), fields[1])
	doge, err := chain.Lookup("DOGE")
	require.NoError(t, err)
	priv, _, err := address.DecodeWIF(fields[2], doge)
	require.NoError(t, err)
	assert.Len(t, priv, 32)

	out = e.mustRun("", "derive", "--chain", "BTC", "--path", "m/44'/0'/0'/0/0")
	assert.Equal(t, "m/44'/0'/0'/0/0\t"+expectedAddress(t, "BTC", 0, 0, 0)+"\n", out)
}

func TestDeriveErrors(t *testing.T) {
	e := newEnv(t)

	_, err := e.run("", "derive")
	assert.ErrorContains(t, err, "libwallet init")

	e.initWallet()

	wrong := filepath.Join(e.dir, "wrong")
	require.NoError(t, os.WriteFile(wrong, []byte("nope"), 0600))
	_, err = e.run("", "--password-file", wrong, "derive")
	assert.ErrorIs(t, err, wallet.ErrDecryptionFailed)

	_, err = e.run("", "derive", "--chain", "DOGE", "--format", "p2wpkh")
	assert.ErrorIs(t, err, address.ErrUnsupportedFormat)

	_, err = e.run("", "derive", "--chain", "NOPE")
	assert.Error(t, err)
}

func TestKeystoreCommands(t *testing.T) {
	e := newEnv(t)
	e.initWallet()

	out := e.mustRun("", "keystore", "new", "--name", "hot", "--index", "4", "--light")
	want := expectedAddress(t, "BSV", 0, 0, 4)
	assert.Contains(t, out, want)

	out = e.mustRun("", "keystore", "list")
	assert.Contains(t, out, "hot\tscrypt\t"+want)

	out = e.mustRun("", "keystore", "decrypt", "hot", "--wif")
	assert.Contains(t, out, "address: "+want)
	assert.Contains(t, out, "wif:")

	exported := e.mustRun("", "keystore", "export", "hot")
	ksFile := filepath.Join(e.dir, "hot.json")
	require.NoError(t, os.WriteFile(ksFile, []byte(exported), 0600))

	out = e.mustRun("", "keystore", "decrypt", "--file", ksFile)
	assert.Contains(t, out, "address: "+want)

	_, err := e.run("", "keystore", "import", ksFile, "--name", "hot")
	assert.ErrorIs(t, err, keystore.ErrKeystoreExists)

	out = e.mustRun("", "keystore", "import", ksFile, "--name", "copy", "--verify")
	assert.Equal(t, "copy\n", out)

	e.mustRun("", "keystore", "delete", "hot")
	out = e.mustRun("", "keystore", "list")
	assert.NotContains(t, out, "hot\t")
	assert.Contains(t, out, "copy\t")
}

func TestKeystoreDecryptWrongPassword(t *testing.T) {
	e := newEnv(t)
	ks, err := keystore.Encrypt(bytes.Repeat([]byte{0x11}, 32), "other", keystore.LightScryptParams)
	require.NoError(t, err)
	data, err := ks.Marshal()
	require.NoError(t, err)
	file := filepath.Join(e.dir, "ks.json")
	require.NoError(t, os.WriteFile(file, data, 0600))

	_, err = e.run("", "keystore", "decrypt", "--file", file)
	assert.ErrorIs(t, err, keystore.ErrInvalidPassword)
}

func writeUTXOs(t *testing.T, dir string, amounts ...uint64) string {
	t.Helper()
	var entries []map[string]interface{}
	for i, amt := range amounts {
		entries = append(entries, map[string]interface{}{
			"txid":   fmt.Sprintf("%064x", i+1),
			"vout":   i,
			"amount": amt,
		})
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	path := filepath.Join(dir, "utxos.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestSendOffline(t *testing.T) {
	e := newEnv(t)
	e.initWallet()
	utxos := writeUTXOs(t, e.dir, 100000, 50000)

	out := e.mustRun("", "send", "--to", testDest, "--amount", "100000", "--fee", "1000", "--utxos-file", utxos)
	assert.Contains(t, out, "fee:    1000\n")
	assert.Contains(t, out, "change: 49000 -> "+expectedAddress(t, "BSV", 0, 1, 0))
	assert.Contains(t, out, "from:   "+expectedAddress(t, "BSV", 0, 0, 0))
	assert.Regexp(t, `txid:   [0-9a-f]{64}\n`, out)

	_, err := e.run("", "send", "--to", testDest, "--amount", "1000000", "--utxos-file", utxos)
	assert.ErrorContains(t, err, "insufficient")

	_, err = e.run("", "send", "--amount", "1000", "--utxos-file", utxos)
	assert.ErrorContains(t, err, "--to")
}

func TestSendBroadcastAndBalance(t *testing.T) {
	e := newEnv(t)
	e.initWallet()
	from := expectedAddress(t, "BSV", 0, 0, 0)

	var broadcasted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64         `json:"id"`
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var result interface{}
		switch req.Method {
		case "listunspent":
			result = []map[string]interface{}{
				{"txid": fmt.Sprintf("%064x", 7), "vout": 0, "amount": 0.0015, "address": from, "confirmations": 3},
			}
		case "sendrawtransaction":
			broadcasted = req.Params[0].(string)
			result = fmt.Sprintf("%064x", 9)
		default:
			t.Errorf("unexpected method %s", req.Method)
		}
		raw, _ := json.Marshal(result)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": req.ID, "result": json.RawMessage(raw), "error": nil})
	}))
	defer server.Close()
	t.Setenv("LIBWALLET_RPC_URL", server.URL)

	out := e.mustRun("", "balance")
	assert.Contains(t, out, "address:     "+from)
	assert.Contains(t, out, "confirmed:   150000")

	out = e.mustRun("", "send", "--to", testDest, "--amount", "100000", "--broadcast")
	assert.Contains(t, out, "broadcast: ")
	assert.NotEmpty(t, broadcasted)
	assert.Contains(t, out, "raw:    "+broadcasted)
}

func TestConfigWriteAndShow(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun("", "--chain", "TBTC", "config", "write")
	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(e.dir, "config"), path)

	out = e.mustRun("", "config", "show")
	assert.Contains(t, out, "chain       = TBTC")
	assert.Contains(t, out, "network     = testnet")

	_, err := e.run("", "--chain", "BTC", "--network", "testnet", "config", "show")
	assert.Error(t, err)
}

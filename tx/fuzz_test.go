package tx

import "testing"

// FuzzTxIDBytesNoPanic ensures txid parsing never panics on arbitrary input.
func FuzzTxIDBytesNoPanic(f *testing.F) {
	f.Add("")
	f.Add("00")
	f.Add("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")
	f.Add("zz5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")

	f.Fuzz(func(t *testing.T, s string) {
		b, err := txidBytes(s)
		if err == nil && len(b) != TxIDLen {
			t.Fatalf("accepted txid of %d bytes", len(b))
		}
	})
}

// FuzzEstimateFeeNoPanic ensures EstimateFee handles all inputs.
func FuzzEstimateFeeNoPanic(f *testing.F) {
	f.Add(0, uint64(0))
	f.Add(226, uint64(1))
	f.Add(-1, uint64(5))
	f.Add(1<<20, uint64(1000))

	f.Fuzz(func(t *testing.T, txSize int, feeRate uint64) {
		EstimateFee(txSize, feeRate)
	})
}

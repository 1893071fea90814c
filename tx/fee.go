package tx

const (
	// DefaultFeeRate is the default fee rate in smallest units per byte.
	DefaultFeeRate = uint64(1)

	// Size estimate constants for a P2PKH spend.
	//
	//	input:    prevhash(32) + index(4) + varint(1) + sig+pubkey(~107) + sequence(4)
	//	output:   value(8) + varint(1) + P2PKH script(25)
	//	overhead: version(4) + locktime(4) + input count(1) + output count(1)
	InputBytes    = 148
	OutputBytes   = 34
	OverheadBytes = 10

	// estimateOutputs sizes every spend as destination plus change, so the
	// fee does not depend on whether change survives the dust check.
	estimateOutputs = 2
)

// EstimateTxSize returns the estimated serialized size of a P2PKH spend.
// The estimate may be off by a few bytes per input because DER signatures
// vary in length.
func EstimateTxSize(numInputs, numOutputs int) int {
	if numInputs < 0 {
		numInputs = 0
	}
	if numOutputs < 0 {
		numOutputs = 0
	}
	return numInputs*InputBytes + numOutputs*OutputBytes + OverheadBytes
}

// EstimateFee multiplies an estimated size by a per-byte fee rate. A zero
// rate falls back to DefaultFeeRate.
func EstimateFee(txSizeBytes int, feeRate uint64) uint64 {
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	if txSizeBytes <= 0 {
		return 0
	}
	return uint64(txSizeBytes) * feeRate
}

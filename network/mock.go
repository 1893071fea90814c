package network

import "context"

var _ Provider = (*MockProvider)(nil)

// MockProvider is a test double for Provider. A nil function field makes
// the corresponding method return zero values.
type MockProvider struct {
	FetchUTXOsFn  func(ctx context.Context, address string) ([]*UTXO, error)
	GetBalanceFn  func(ctx context.Context, address string) (*Balance, error)
	BroadcastTxFn func(ctx context.Context, rawTxHex string) (string, error)
}

func (m *MockProvider) FetchUTXOs(ctx context.Context, address string) ([]*UTXO, error) {
	if m.FetchUTXOsFn == nil {
		return nil, nil
	}
	return m.FetchUTXOsFn(ctx, address)
}

func (m *MockProvider) GetBalance(ctx context.Context, address string) (*Balance, error) {
	if m.GetBalanceFn == nil {
		return &Balance{}, nil
	}
	return m.GetBalanceFn(ctx, address)
}

func (m *MockProvider) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	if m.BroadcastTxFn == nil {
		return "", nil
	}
	return m.BroadcastTxFn(ctx, rawTxHex)
}

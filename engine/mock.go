package engine

import "context"

// MockUtxoSource is a test double for UtxoSource.
// The function field must be set before the method is called.
type MockUtxoSource struct {
	ListUnspentFn func(ctx context.Context, address string) ([]*UTXO, error)
}

func (m *MockUtxoSource) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	return m.ListUnspentFn(ctx, address)
}

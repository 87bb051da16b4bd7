package dispatch

import (
	"context"

	"github.com/coinsendorg/libcoinsend-go/engine"
	"github.com/coinsendorg/libcoinsend-go/source"
)

// MockEngine implements TxEngine with overridable functions.
type MockEngine struct {
	BuildFn func(ctx context.Context, req engine.BuildRequest) (*engine.BuiltTx, error)
	FeeFn   func(ctx context.Context, funding []string, outputs []engine.Output, reserved []engine.Outpoint) (uint64, error)
}

var _ TxEngine = (*MockEngine)(nil)

func (m *MockEngine) Build(ctx context.Context, req engine.BuildRequest) (*engine.BuiltTx, error) {
	return m.BuildFn(ctx, req)
}

func (m *MockEngine) Fee(ctx context.Context, funding []string, outputs []engine.Output, reserved []engine.Outpoint) (uint64, error) {
	return m.FeeFn(ctx, funding, outputs, reserved)
}

// MockBroadcaster implements Broadcaster with overridable functions.
// Unset functions succeed with zero values.
type MockBroadcaster struct {
	BroadcastTxFn   func(ctx context.Context, rawTxHex string) (string, error)
	GetDifficultyFn func(ctx context.Context) (float64, error)
}

var _ Broadcaster = (*MockBroadcaster)(nil)

func (m *MockBroadcaster) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	if m.BroadcastTxFn == nil {
		return "", nil
	}
	return m.BroadcastTxFn(ctx, rawTxHex)
}

func (m *MockBroadcaster) GetDifficulty(ctx context.Context) (float64, error) {
	if m.GetDifficultyFn == nil {
		return 0, nil
	}
	return m.GetDifficultyFn(ctx)
}

// MockHistoryStore implements HistoryStore with an overridable function.
// An unset function succeeds.
type MockHistoryStore struct {
	AppendFn func(ctx context.Context, wallet source.WalletID, entry *HistoryEntry) error
}

var _ HistoryStore = (*MockHistoryStore)(nil)

func (m *MockHistoryStore) Append(ctx context.Context, wallet source.WalletID, entry *HistoryEntry) error {
	if m.AppendFn == nil {
		return nil
	}
	return m.AppendFn(ctx, wallet, entry)
}

// MockPendingStore implements PendingStore with overridable functions.
// Unset functions succeed with zero values.
type MockPendingStore struct {
	PutFn  func(ctx context.Context, ptx *PendingTx) error
	ListFn func(ctx context.Context, wallet source.WalletID) ([]*PendingTx, error)
}

var _ PendingStore = (*MockPendingStore)(nil)

func (m *MockPendingStore) Put(ctx context.Context, ptx *PendingTx) error {
	if m.PutFn == nil {
		return nil
	}
	return m.PutFn(ctx, ptx)
}

func (m *MockPendingStore) List(ctx context.Context, wallet source.WalletID) ([]*PendingTx, error) {
	if m.ListFn == nil {
		return nil, nil
	}
	return m.ListFn(ctx, wallet)
}

package dispatch

import (
	"context"
	"time"

	"github.com/coinsendorg/libcoinsend-go/engine"
	"github.com/coinsendorg/libcoinsend-go/source"
)

// Destination is one (recipient, amount) pair of the payment's output
// intent, independent of which inputs fund it.
type Destination struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"` // satoshis, must be positive
}

// HistoryEntry records one successful send. Created the moment the
// transaction is built, immutable thereafter; ownership passes to history
// storage.
type HistoryEntry struct {
	TxID      string    `json:"txid"` // display-order hex
	RawTx     []byte    `json:"raw_tx"`
	Fee       uint64    `json:"fee"`
	Inputs    []string  `json:"inputs"`  // funding addresses spent from
	Outputs   []string  `json:"outputs"` // destination and change addresses
	CreatedAt time.Time `json:"created_at"`
}

// PendingTx wraps a built transaction with wallet scope and the outpoints
// it consumes. Registered before broadcast, so a crash mid-broadcast
// leaves recoverable state; removal is owned by external lifecycle
// management.
type PendingTx struct {
	Wallet    source.WalletID   `json:"wallet"`
	TxID      string            `json:"txid"`
	RawTxHex  string            `json:"raw_tx_hex"`
	Spends    []engine.Outpoint `json:"spends"`
	CreatedAt time.Time         `json:"created_at"`
}

// AddressView is one transaction endpoint as shown to the caller.
type AddressView struct {
	Address string `json:"address"`
	IsOurs  bool   `json:"is_ours"` // owned by the paying wallet
}

// TxView is the caller-facing result of a successful payment.
type TxView struct {
	TxID       string        `json:"txid"`
	Fee        uint64        `json:"fee"`
	Inputs     []AddressView `json:"inputs"`
	Outputs    []AddressView `json:"outputs"`
	CreatedAt  time.Time     `json:"created_at"`
	Difficulty float64       `json:"difficulty"` // chain difficulty at view time
}

// TxEngine is the fee/UTXO/transaction construction collaborator.
// Implemented by engine.Engine.
type TxEngine interface {
	Build(ctx context.Context, req engine.BuildRequest) (*engine.BuiltTx, error)
	Fee(ctx context.Context, funding []string, outputs []engine.Output, reserved []engine.Outpoint) (uint64, error)
}

// Broadcaster is the network submission collaborator.
// Implemented by network.Client.
type Broadcaster interface {
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)
	GetDifficulty(ctx context.Context) (float64, error)
}

// HistoryStore appends immutable history entries per wallet.
// Implemented by history.BoltHistoryStore.
type HistoryStore interface {
	Append(ctx context.Context, wallet source.WalletID, entry *HistoryEntry) error
}

// PendingStore tracks in-flight transactions per wallet.
// Implemented by history.BoltPendingStore.
type PendingStore interface {
	Put(ctx context.Context, ptx *PendingTx) error
	List(ctx context.Context, wallet source.WalletID) ([]*PendingTx, error)
}

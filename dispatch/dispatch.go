// Package dispatch orchestrates outgoing payments: it authenticates the
// spending passphrase, resolves the money source to funding addresses,
// hands the transaction engine a per-payment signing capability, registers
// the transaction as pending, broadcasts it, and records history. All
// collaborators are injected as interfaces; the package owns only the
// sequencing and its failure taxonomy.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"go.uber.org/zap"

	"github.com/coinsendorg/libcoinsend-go/config"
	"github.com/coinsendorg/libcoinsend-go/engine"
	"github.com/coinsendorg/libcoinsend-go/keys"
	"github.com/coinsendorg/libcoinsend-go/ratelimit"
	"github.com/coinsendorg/libcoinsend-go/signer"
	"github.com/coinsendorg/libcoinsend-go/source"
)

// Deps carries the dispatcher's collaborators.
type Deps struct {
	Directory source.Directory
	Keys      keys.Store
	Engine    TxEngine
	Node      Broadcaster
	History   HistoryStore
	Pending   PendingStore
	Log       *zap.Logger
}

// Dispatcher is the payment orchestrator.
type Dispatcher struct {
	cfg      config.Config
	dir      source.Directory
	resolver *source.Resolver
	keys     keys.Store
	engine   TxEngine
	node     Broadcaster
	history  HistoryStore
	pending  PendingStore
	log      *zap.Logger
}

// New creates a Dispatcher. All collaborators except the logger are
// required; a nil logger falls back to a no-op one.
func New(cfg config.Config, deps Deps) (*Dispatcher, error) {
	switch {
	case deps.Directory == nil:
		return nil, fmt.Errorf("dispatch: nil directory")
	case deps.Keys == nil:
		return nil, fmt.Errorf("dispatch: nil key store")
	case deps.Engine == nil:
		return nil, fmt.Errorf("dispatch: nil engine")
	case deps.Node == nil:
		return nil, fmt.Errorf("dispatch: nil node client")
	case deps.History == nil:
		return nil, fmt.Errorf("dispatch: nil history store")
	case deps.Pending == nil:
		return nil, fmt.Errorf("dispatch: nil pending store")
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		cfg:      cfg,
		dir:      deps.Directory,
		resolver: source.NewResolver(deps.Directory),
		keys:     deps.Keys,
		engine:   deps.Engine,
		node:     deps.Node,
		history:  deps.History,
		pending:  deps.Pending,
		log:      log,
	}, nil
}

// NewPayment sends a payment funded by src to the given destinations,
// authorized by the wallet passphrase. The call is floored to the
// configured send interval: it does not return before the interval has
// elapsed, which bounds how fast a serial caller can issue payments.
func (d *Dispatcher) NewPayment(ctx context.Context, passphrase string, src source.MoneySource, destinations []Destination) (*TxView, error) {
	interval := d.cfg.SendInterval
	if interval <= 0 {
		interval = ratelimit.DefaultInterval
	}
	return ratelimit.Do(ctx, interval, func(ctx context.Context) (*TxView, error) {
		return d.sendMoney(ctx, passphrase, src, destinations)
	})
}

func (d *Dispatcher) sendMoney(ctx context.Context, passphrase string, src source.MoneySource, destinations []Destination) (*TxView, error) {
	if d.cfg.TxCreationDisabled {
		return nil, ErrServiceDisabled
	}

	wallet := src.Wallet()

	// Authenticate before touching anything else: the wallet root key must
	// decrypt under the given passphrase. The decrypted material is
	// discarded; per-address keys are derived later, on demand.
	rootKey, err := d.keys.RootKey(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if _, err := keys.Decrypt(rootKey.Data, passphrase); err != nil {
		return nil, fmt.Errorf("%w: wallet %q: %w", ErrAuthenticationFailed, wallet, err)
	}

	outputs, err := expandDestinations(destinations)
	if err != nil {
		return nil, err
	}

	metas, err := d.fundingSet(ctx, src)
	if err != nil {
		return nil, err
	}

	funding := make([]string, len(metas))
	fundingMap := make(map[string]source.AddressMeta, len(metas))
	for i, meta := range metas {
		// Our own directory produced these; a parse failure is an internal
		// invariant fault, not caller error.
		if _, err := script.NewAddressFromString(meta.Address); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", errAddressCodec, meta.Address, err)
		}
		funding[i] = meta.Address
		fundingMap[meta.Address] = meta
	}

	keySet, err := d.keys.SecretKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load key set: %w", ErrTxCreationFailed, err)
	}
	signers := signer.NewProvider(keySet, passphrase, fundingMap)

	changeAddr, err := d.changeAddress(ctx, src, metas)
	if err != nil {
		return nil, err
	}

	reserved, err := d.reservedOutpoints(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTxCreationFailed, err)
	}

	built, err := d.engine.Build(ctx, engine.BuildRequest{
		Funding:       funding,
		Outputs:       outputs,
		Reserved:      reserved,
		ChangeAddress: changeAddr,
		Signers:       signers,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTxCreationFailed, err)
	}

	txHash, err := chainhash.NewHash(built.TxID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid built txid: %w", ErrTxCreationFailed, err)
	}
	txid := txHash.String()
	createdAt := time.Now()

	// Register the pending transaction before broadcasting: once the raw tx
	// leaves this process its inputs are spent, whatever happens next.
	ptx := &PendingTx{
		Wallet:    wallet,
		TxID:      txid,
		RawTxHex:  built.Hex,
		Spends:    built.SpentOutpoints,
		CreatedAt: createdAt,
	}
	if err := d.pending.Put(ctx, ptx); err != nil {
		return nil, fmt.Errorf("%w: register pending tx: %w", ErrTxCreationFailed, err)
	}

	if _, err := d.node.BroadcastTx(ctx, built.Hex); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTxCreationFailed, err)
	}

	d.log.Info("payment broadcast",
		zap.String("wallet", string(wallet)),
		zap.String("txid", txid),
		zap.Uint64("fee", built.Fee),
		zap.Int("inputs", len(built.InputAddresses)),
		zap.Int("outputs", len(built.OutputAddresses)))

	// History is bookkeeping: the payment is on the wire, so a recording
	// failure must not turn it into a caller-visible error.
	entry := &HistoryEntry{
		TxID:      txid,
		RawTx:     built.RawTx,
		Fee:       built.Fee,
		Inputs:    built.InputAddresses,
		Outputs:   built.OutputAddresses,
		CreatedAt: createdAt,
	}
	if err := d.history.Append(ctx, wallet, entry); err != nil {
		d.log.Error("history append failed",
			zap.String("wallet", string(wallet)),
			zap.String("txid", txid),
			zap.Error(err))
	}

	return d.view(ctx, wallet, built, txid, createdAt), nil
}

// TxFee quotes the fee a payment from src to destinations would cost,
// without deriving signers, building or broadcasting anything.
func (d *Dispatcher) TxFee(ctx context.Context, src source.MoneySource, destinations []Destination) (uint64, error) {
	outputs, err := expandDestinations(destinations)
	if err != nil {
		return 0, err
	}

	metas, err := d.fundingSet(ctx, src)
	if err != nil {
		return 0, err
	}
	funding := make([]string, len(metas))
	for i, meta := range metas {
		funding[i] = meta.Address
	}

	reserved, err := d.reservedOutpoints(ctx, src.Wallet())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFeeEstimation, err)
	}

	fee, err := d.engine.Fee(ctx, funding, outputs, reserved)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFeeEstimation, err)
	}
	return fee, nil
}

// expandDestinations validates destinations and converts them to engine
// outputs.
func expandDestinations(destinations []Destination) ([]engine.Output, error) {
	if len(destinations) == 0 {
		return nil, fmt.Errorf("%w: no destinations", ErrInvalidDestination)
	}
	outputs := make([]engine.Output, len(destinations))
	for i, dst := range destinations {
		if dst.Address == "" {
			return nil, fmt.Errorf("%w: destination %d has empty address", ErrInvalidDestination, i)
		}
		if dst.Amount == 0 {
			return nil, fmt.Errorf("%w: destination %d has zero amount", ErrInvalidDestination, i)
		}
		outputs[i] = engine.Output{Address: dst.Address, Amount: dst.Amount}
	}
	return outputs, nil
}

// fundingSet resolves src to its funding addresses, mapping empty
// resolutions to ErrNoFundingAddresses.
func (d *Dispatcher) fundingSet(ctx context.Context, src source.MoneySource) ([]source.AddressMeta, error) {
	metas, err := d.resolver.ResolveAddresses(ctx, src)
	if err != nil {
		if errors.Is(err, source.ErrEmptySource) || errors.Is(err, source.ErrNoAccounts) {
			return nil, fmt.Errorf("%w: %w", ErrNoFundingAddresses, err)
		}
		return nil, err
	}
	return metas, nil
}

// changeAddress picks the change destination: the first funding address
// belonging to the representative account, or the first funding address
// when the representative account contributed none.
func (d *Dispatcher) changeAddress(ctx context.Context, src source.MoneySource, metas []source.AddressMeta) (string, error) {
	rep, err := d.resolver.RepresentativeAccount(ctx, src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTxCreationFailed, err)
	}
	for _, meta := range metas {
		if meta.Account == rep {
			return meta.Address, nil
		}
	}
	return metas[0].Address, nil
}

// reservedOutpoints gathers the outpoints held by the wallet's pending
// transactions so input selection cannot double-spend them.
func (d *Dispatcher) reservedOutpoints(ctx context.Context, wallet source.WalletID) ([]engine.Outpoint, error) {
	pending, err := d.pending.List(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("list pending txs: %w", err)
	}
	var reserved []engine.Outpoint
	for _, ptx := range pending {
		reserved = append(reserved, ptx.Spends...)
	}
	return reserved, nil
}

// view assembles the caller-facing result. Ownership classification and
// the difficulty snapshot are decoration; their failures are logged and
// degrade the view, never the payment.
func (d *Dispatcher) view(ctx context.Context, wallet source.WalletID, built *engine.BuiltTx, txid string, createdAt time.Time) *TxView {
	difficulty, err := d.node.GetDifficulty(ctx)
	if err != nil {
		d.log.Warn("difficulty snapshot failed", zap.String("txid", txid), zap.Error(err))
		difficulty = 0
	}

	return &TxView{
		TxID:       txid,
		Fee:        built.Fee,
		Inputs:     d.classify(ctx, wallet, built.InputAddresses),
		Outputs:    d.classify(ctx, wallet, built.OutputAddresses),
		CreatedAt:  createdAt,
		Difficulty: difficulty,
	}
}

func (d *Dispatcher) classify(ctx context.Context, wallet source.WalletID, addresses []string) []AddressView {
	views := make([]AddressView, len(addresses))
	for i, addr := range addresses {
		owned, err := d.dir.OwnsAddress(ctx, wallet, addr)
		if err != nil {
			d.log.Warn("address ownership check failed",
				zap.String("wallet", string(wallet)),
				zap.String("address", addr),
				zap.Error(err))
			owned = false
		}
		views[i] = AddressView{Address: addr, IsOurs: owned}
	}
	return views
}

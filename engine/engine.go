// Package engine assembles and signs payment transactions: it selects
// unspent outputs from the funding addresses (excluding outpoints already
// reserved by pending transactions), estimates the fee, adds P2PKH outputs
// for each destination plus change, and signs inputs through the signer
// provider handed in by the orchestrator.
package engine

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	"github.com/coinsendorg/libcoinsend-go/signer"
)

const (
	// DustLimit is the minimum satoshi value for a spendable output.
	DustLimit = uint64(546)

	// DefaultFeeRate is the default fee rate in satoshis per KB.
	DefaultFeeRate = uint64(1)

	// TxIDLen is the byte length of a transaction ID.
	TxIDLen = 32
)

// UTXO is an unspent transaction output available as a payment input.
type UTXO struct {
	TxID         []byte `json:"txid"` // 32 bytes
	Vout         uint32 `json:"vout"`
	Amount       uint64 `json:"amount"` // satoshis
	ScriptPubKey []byte `json:"script_pubkey"`
	Address      string `json:"address"`
}

// Outpoint identifies one transaction output, used to mark inputs reserved
// by pending transactions.
type Outpoint struct {
	TxID string `json:"txid"` // hex
	Vout uint32 `json:"vout"`
}

// Output is one concrete payment output.
type Output struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"` // satoshis
}

// BuiltTx is the result of a successful build: the signed transaction plus
// the input/output address sets the history record needs.
type BuiltTx struct {
	RawTx           []byte     // serialized signed transaction
	TxID            []byte     // transaction hash (32 bytes)
	Hex             string     // signed transaction hex
	Fee             uint64     // satoshis paid in fees
	InputAddresses  []string   // funding addresses actually spent from
	OutputAddresses []string   // destination addresses plus change
	SpentOutpoints  []Outpoint // outpoints consumed by this transaction
}

// UtxoSource lists spendable outputs per address. The network node client
// implements it; tests use a mock.
type UtxoSource interface {
	ListUnspent(ctx context.Context, address string) ([]*UTXO, error)
}

// SignerProvider supplies the signing capability for a funding address.
// Implemented by signer.Provider; the engine never sees a passphrase.
type SignerProvider interface {
	SignerFor(address string) (*signer.Signer, error)
}

// BuildRequest carries everything one build needs.
type BuildRequest struct {
	Funding       []string       // raw addresses allowed to fund the payment
	Outputs       []Output       // destination outputs, non-empty
	Reserved      []Outpoint     // outpoints held by pending transactions
	ChangeAddress string         // change destination (representative account)
	Signers       SignerProvider // per-payment signing capability
}

// Engine is the fee/UTXO/transaction engine.
type Engine struct {
	utxos   UtxoSource
	feeRate uint64 // sat/KB
}

// New creates an Engine. A zero feeRate falls back to DefaultFeeRate.
func New(utxos UtxoSource, feeRate uint64) *Engine {
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	return &Engine{utxos: utxos, feeRate: feeRate}
}

// Fee quotes the fee for paying outputs from the funding addresses without
// signing or building anything.
func (e *Engine) Fee(ctx context.Context, funding []string, outputs []Output, reserved []Outpoint) (uint64, error) {
	sel, err := e.selectInputs(ctx, funding, outputs, reserved)
	if err != nil {
		return 0, err
	}
	return sel.fee, nil
}

// Build selects inputs, assembles the transaction and signs every input
// through the signer provider.
func (e *Engine) Build(ctx context.Context, req BuildRequest) (*BuiltTx, error) {
	if req.Signers == nil {
		return nil, fmt.Errorf("%w: signer provider", ErrNilParam)
	}
	if req.ChangeAddress == "" {
		return nil, fmt.Errorf("%w: change address", ErrNilParam)
	}

	sel, err := e.selectInputs(ctx, req.Funding, req.Outputs, req.Reserved)
	if err != nil {
		return nil, err
	}

	sdkTx := transaction.NewTransaction()

	// Inputs, in selection order.
	for _, u := range sel.inputs {
		utxoHash, err := chainhash.NewHash(u.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid UTXO TxID: %w", ErrScriptBuild, err)
		}
		sdkTx.AddInput(&transaction.TransactionInput{
			SourceTXID:       utxoHash,
			SourceTxOutIndex: u.Vout,
			SequenceNumber:   transaction.DefaultSequenceNumber,
		})
	}

	// Destination outputs.
	outputAddrs := make([]string, 0, len(req.Outputs)+1)
	for _, out := range req.Outputs {
		lockScript, err := lockingScriptFor(out.Address)
		if err != nil {
			return nil, err
		}
		sdkTx.Outputs = append(sdkTx.Outputs, &transaction.TransactionOutput{
			Satoshis:      out.Amount,
			LockingScript: lockScript,
		})
		outputAddrs = append(outputAddrs, out.Address)
	}

	// Change output, if above dust.
	change := sel.total - sel.spend - sel.fee
	if change > DustLimit {
		changeScript, err := lockingScriptFor(req.ChangeAddress)
		if err != nil {
			return nil, err
		}
		sdkTx.Outputs = append(sdkTx.Outputs, &transaction.TransactionOutput{
			Satoshis:      change,
			LockingScript: changeScript,
		})
		outputAddrs = append(outputAddrs, req.ChangeAddress)
	}

	// Attach source output info and unlockers, then sign.
	inputAddrs := make([]string, 0, len(sel.inputs))
	seenAddr := make(map[string]bool)
	for i, u := range sel.inputs {
		sgn, err := req.Signers.SignerFor(u.Address)
		if err != nil {
			return nil, fmt.Errorf("engine: signer for input %d: %w", i, err)
		}
		unlocker, err := sgn.Unlocker()
		if err != nil {
			return nil, fmt.Errorf("%w: input %d: %w", ErrSigningFailed, i, err)
		}

		lockingScript := script.NewFromBytes(u.ScriptPubKey)
		sdkTx.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      u.Amount,
			LockingScript: lockingScript,
		})
		sdkTx.Inputs[i].UnlockingScriptTemplate = unlocker

		if !seenAddr[u.Address] {
			seenAddr[u.Address] = true
			inputAddrs = append(inputAddrs, u.Address)
		}
	}

	if err := sdkTx.Sign(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	spent := make([]Outpoint, len(sel.inputs))
	for i, u := range sel.inputs {
		spent[i] = Outpoint{TxID: hex.EncodeToString(u.TxID), Vout: u.Vout}
	}

	return &BuiltTx{
		RawTx:           sdkTx.Bytes(),
		TxID:            sdkTx.TxID().CloneBytes(),
		Hex:             sdkTx.Hex(),
		Fee:             sel.fee,
		InputAddresses:  inputAddrs,
		OutputAddresses: outputAddrs,
		SpentOutpoints:  spent,
	}, nil
}

// selection is the outcome of greedy input selection.
type selection struct {
	inputs []*UTXO
	total  uint64 // sum of selected input amounts
	spend  uint64 // sum of requested output amounts
	fee    uint64
}

// selectInputs gathers spendable outputs from the funding addresses,
// filters out reserved outpoints, and greedily selects inputs in listing
// order until they cover the outputs plus the (selection-dependent) fee.
func (e *Engine) selectInputs(ctx context.Context, funding []string, outputs []Output, reserved []Outpoint) (*selection, error) {
	if len(funding) == 0 {
		return nil, fmt.Errorf("%w: funding addresses", ErrNilParam)
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}

	var spend uint64
	for i, out := range outputs {
		if out.Amount == 0 {
			return nil, fmt.Errorf("%w: output %d has zero amount", ErrInvalidOutput, i)
		}
		if out.Address == "" {
			return nil, fmt.Errorf("%w: output %d has empty address", ErrInvalidOutput, i)
		}
		spend += out.Amount
	}

	held := make(map[string]bool, len(reserved))
	for _, op := range reserved {
		held[outpointKey(op.TxID, op.Vout)] = true
	}

	var available []*UTXO
	for _, addr := range funding {
		utxos, err := e.utxos.ListUnspent(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("engine: list unspent for %s: %w", addr, err)
		}
		for _, u := range utxos {
			if held[outpointKey(hex.EncodeToString(u.TxID), u.Vout)] {
				continue
			}
			available = append(available, u)
		}
	}

	// Greedy selection. The fee grows with each added input, so re-estimate
	// after every selection step. Outputs count includes a change slot.
	numOutputs := len(outputs) + 1
	var (
		selected []*UTXO
		total    uint64
	)
	for _, u := range available {
		selected = append(selected, u)
		total += u.Amount
		fee := EstimateFee(EstimateTxSize(len(selected), numOutputs), e.feeRate)
		if total >= spend+fee {
			return &selection{inputs: selected, total: total, spend: spend, fee: fee}, nil
		}
	}

	fee := EstimateFee(EstimateTxSize(len(available)+1, numOutputs), e.feeRate)
	return nil, fmt.Errorf("%w: need %d sat plus ~%d fee, have %d sat",
		ErrInsufficientFunds, spend, fee, total)
}

func outpointKey(txid string, vout uint32) string {
	return fmt.Sprintf("%s:%d", txid, vout)
}

// lockingScriptFor builds a P2PKH locking script for a base58 address.
func lockingScriptFor(address string) (*script.Script, error) {
	addr, err := script.NewAddressFromString(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, address, err)
	}
	lockScript, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock for %q: %w", ErrScriptBuild, address, err)
	}
	return lockScript, nil
}

// EstimateFee estimates the transaction fee for a given size and fee rate.
// Returns ceil(txSizeBytes * feeRate / 1000).
func EstimateFee(txSizeBytes int, feeRate uint64) uint64 {
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	fee := uint64(txSizeBytes) * feeRate
	return (fee + 999) / 1000
}

// EstimateTxSize provides a rough estimate of transaction size in bytes
// for a plain P2PKH payment.
func EstimateTxSize(numInputs, numOutputs int) int {
	// Base: version(4) + locktime(4) + input count varint(1) + output count varint(1) = 10
	// Per input: prevhash(32) + previndex(4) + scriptlen varint(1) + script(~107 for P2PKH) + sequence(4) = 148
	// Per output: value(8) + scriptlen varint(1) + script(~25 for P2PKH) = 34
	return 10 + numInputs*148 + numOutputs*34
}

package network

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/coinsendorg/libcoinsend-go/engine"
)

// Compile-time interface check: the client is the engine's UTXO source.
var _ engine.UtxoSource = (*Client)(nil)

// btcToSat converts a coin float64 amount (as returned by the RPC node) to
// satoshis. It uses math.Round to avoid floating-point truncation issues.
func btcToSat(coins float64) uint64 {
	return uint64(math.Round(coins * 1e8))
}

// listUnspentResult maps the JSON fields returned by the listunspent call.
type listUnspentResult struct {
	TxID          string  `json:"txid"`
	Vout          uint32  `json:"vout"`
	Amount        float64 `json:"amount"`
	ScriptPubKey  string  `json:"scriptPubKey"`
	Address       string  `json:"address"`
	Confirmations int64   `json:"confirmations"`
}

// ListUnspent returns all unspent transaction outputs for the given
// address. It calls `listunspent 0 9999999 ["address"]`, converts coin
// amounts to satoshis and txids to internal byte order.
func (c *Client) ListUnspent(ctx context.Context, address string) ([]*engine.UTXO, error) {
	params := []interface{}{0, 9999999, []string{address}}
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", params, &results); err != nil {
		return nil, err
	}

	utxos := make([]*engine.UTXO, len(results))
	for i, r := range results {
		txid, err := chainhash.NewHashFromHex(r.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: txid %q: %w", ErrInvalidResponse, r.TxID, err)
		}
		scriptBytes, err := hex.DecodeString(r.ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf("%w: scriptPubKey for %s: %w", ErrInvalidResponse, r.TxID, err)
		}
		utxos[i] = &engine.UTXO{
			TxID:         txid.CloneBytes(),
			Vout:         r.Vout,
			Amount:       btcToSat(r.Amount),
			ScriptPubKey: scriptBytes,
			Address:      r.Address,
		}
	}
	return utxos, nil
}

// BroadcastTx submits a raw transaction hex to the network and returns the
// txid. It calls `sendrawtransaction "hex"`; a node rejection is wrapped
// with ErrBroadcastRejected.
func (c *Client) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	params := []interface{}{rawTxHex}
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", params, &txid); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
	}
	return txid, nil
}

// GetDifficulty returns the current proof-of-work difficulty of the chain
// tip, via `getdifficulty`.
func (c *Client) GetDifficulty(ctx context.Context) (float64, error) {
	var difficulty float64
	if err := c.Call(ctx, "getdifficulty", nil, &difficulty); err != nil {
		return 0, err
	}
	return difficulty, nil
}

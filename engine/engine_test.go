package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinsendorg/libcoinsend-go/keys"
	"github.com/coinsendorg/libcoinsend-go/signer"
	"github.com/coinsendorg/libcoinsend-go/source"
)

const testPassphrase = "engine-test-pass"

// fundedAddress is one generated key with its address, locking script and
// encrypted key record.
type fundedAddress struct {
	address string
	lock    []byte
	key     keys.SecretKey
}

func newFundedAddress(t *testing.T) fundedAddress {
	t.Helper()

	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	addr, err := script.NewAddressFromPublicKey(priv.PubKey(), true)
	require.NoError(t, err)
	lockScript, err := p2pkh.Lock(addr)
	require.NoError(t, err)
	encrypted, err := keys.Encrypt(priv.Serialize(), testPassphrase)
	require.NoError(t, err)

	return fundedAddress{
		address: addr.AddressString,
		lock:    []byte(*lockScript),
		key:     keys.SecretKey{Address: addr.AddressString, Data: encrypted},
	}
}

func fakeTxID(tag byte) []byte {
	h := sha256.Sum256([]byte{tag})
	return h[:]
}

func providerFor(funded ...fundedAddress) *signer.Provider {
	keySet := make([]keys.SecretKey, 0, len(funded))
	funding := make(map[string]source.AddressMeta, len(funded))
	for _, f := range funded {
		keySet = append(keySet, f.key)
		funding[f.address] = source.AddressMeta{
			Address: f.address,
			Account: source.AccountID{Wallet: "w1", Index: 0},
		}
	}
	return signer.NewProvider(keySet, testPassphrase, funding)
}

// --- Fee tests ---

func TestFee_SingleInput(t *testing.T) {
	funded := newFundedAddress(t)
	src := &MockUtxoSource{
		ListUnspentFn: func(_ context.Context, address string) ([]*UTXO, error) {
			return []*UTXO{{TxID: fakeTxID(1), Vout: 0, Amount: 500_000, ScriptPubKey: funded.lock, Address: address}}, nil
		},
	}

	e := New(src, 500) // 500 sat/KB so the fee is visible
	fee, err := e.Fee(context.Background(), []string{funded.address}, []Output{{Address: funded.address, Amount: 100_000}}, nil)
	require.NoError(t, err)

	assert.Equal(t, EstimateFee(EstimateTxSize(1, 2), 500), fee)
	assert.Greater(t, fee, uint64(0))
}

func TestFee_InsufficientFunds(t *testing.T) {
	funded := newFundedAddress(t)
	src := &MockUtxoSource{
		ListUnspentFn: func(_ context.Context, address string) ([]*UTXO, error) {
			return []*UTXO{{TxID: fakeTxID(1), Vout: 0, Amount: 100, ScriptPubKey: funded.lock, Address: address}}, nil
		},
	}

	e := New(src, 0)
	_, err := e.Fee(context.Background(), []string{funded.address}, []Output{{Address: funded.address, Amount: 100_000}}, nil)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestFee_ReservedOutpointsExcluded(t *testing.T) {
	funded := newFundedAddress(t)
	txid := fakeTxID(1)
	src := &MockUtxoSource{
		ListUnspentFn: func(_ context.Context, address string) ([]*UTXO, error) {
			return []*UTXO{{TxID: txid, Vout: 0, Amount: 500_000, ScriptPubKey: funded.lock, Address: address}}, nil
		},
	}

	e := New(src, 0)
	reserved := []Outpoint{{TxID: hex.EncodeToString(txid), Vout: 0}}
	_, err := e.Fee(context.Background(), []string{funded.address}, []Output{{Address: funded.address, Amount: 100_000}}, reserved)

	assert.ErrorIs(t, err, ErrInsufficientFunds, "the only UTXO is held by a pending tx")
}

// --- Build tests ---

func TestBuild_TwoInputsOneOutputWithChange(t *testing.T) {
	a := newFundedAddress(t)
	b := newFundedAddress(t)
	dest := newFundedAddress(t)
	change := newFundedAddress(t)

	perAddr := map[string][]*UTXO{
		a.address: {{TxID: fakeTxID(1), Vout: 0, Amount: 80_000, ScriptPubKey: a.lock, Address: a.address}},
		b.address: {{TxID: fakeTxID(2), Vout: 1, Amount: 80_000, ScriptPubKey: b.lock, Address: b.address}},
	}
	src := &MockUtxoSource{
		ListUnspentFn: func(_ context.Context, address string) ([]*UTXO, error) {
			return perAddr[address], nil
		},
	}

	e := New(src, DefaultFeeRate)
	built, err := e.Build(context.Background(), BuildRequest{
		Funding:       []string{a.address, b.address},
		Outputs:       []Output{{Address: dest.address, Amount: 100_000}},
		ChangeAddress: change.address,
		Signers:       providerFor(a, b),
	})
	require.NoError(t, err)

	assert.Len(t, built.TxID, TxIDLen)
	assert.NotEmpty(t, built.RawTx)
	assert.NotEmpty(t, built.Hex)
	assert.Equal(t, []string{a.address, b.address}, built.InputAddresses,
		"both funding addresses are needed to cover 100k sat")
	assert.Equal(t, []string{dest.address, change.address}, built.OutputAddresses,
		"destination then change")
	assert.Equal(t, EstimateFee(EstimateTxSize(2, 2), DefaultFeeRate), built.Fee)
	assert.Equal(t, []Outpoint{
		{TxID: hex.EncodeToString(fakeTxID(1)), Vout: 0},
		{TxID: hex.EncodeToString(fakeTxID(2)), Vout: 1},
	}, built.SpentOutpoints)
}

func TestBuild_SignerFailurePropagates(t *testing.T) {
	a := newFundedAddress(t)
	src := &MockUtxoSource{
		ListUnspentFn: func(_ context.Context, address string) ([]*UTXO, error) {
			return []*UTXO{{TxID: fakeTxID(1), Vout: 0, Amount: 500_000, ScriptPubKey: a.lock, Address: address}}, nil
		},
	}

	// Provider with an empty funding map: every signer lookup is an
	// internal-invariant fault.
	empty := signer.NewProvider(nil, testPassphrase, map[string]source.AddressMeta{})

	e := New(src, 0)
	_, err := e.Build(context.Background(), BuildRequest{
		Funding:       []string{a.address},
		Outputs:       []Output{{Address: a.address, Amount: 100_000}},
		ChangeAddress: a.address,
		Signers:       empty,
	})
	assert.ErrorIs(t, err, signer.ErrOutsideFundingSet)
}

func TestBuild_Validation(t *testing.T) {
	a := newFundedAddress(t)
	src := &MockUtxoSource{
		ListUnspentFn: func(_ context.Context, _ string) ([]*UTXO, error) { return nil, nil },
	}
	e := New(src, 0)
	ctx := context.Background()

	_, err := e.Build(ctx, BuildRequest{Funding: []string{a.address}, Outputs: []Output{{Address: a.address, Amount: 1}}, ChangeAddress: a.address})
	assert.ErrorIs(t, err, ErrNilParam, "missing signer provider")

	_, err = e.Build(ctx, BuildRequest{Funding: []string{a.address}, Outputs: nil, ChangeAddress: a.address, Signers: providerFor(a)})
	assert.ErrorIs(t, err, ErrNoOutputs)

	_, err = e.Build(ctx, BuildRequest{Funding: []string{a.address}, Outputs: []Output{{Address: a.address, Amount: 0}}, ChangeAddress: a.address, Signers: providerFor(a)})
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

// --- Estimation tests ---

func TestEstimateFee(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		feeRate uint64
		want    uint64
	}{
		{"zero size", 0, 1, 0},
		{"sub-KB rounds up", 250, 1, 1},
		{"exact KB", 1000, 1, 1},
		{"over KB rounds up", 1001, 1, 2},
		{"zero rate uses default", 1000, 0, 1},
		{"higher rate", 500, 500, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateFee(tt.size, tt.feeRate))
		})
	}
}

func TestEstimateTxSize(t *testing.T) {
	assert.Equal(t, 10+148+34*2, EstimateTxSize(1, 2))
	assert.Equal(t, 10, EstimateTxSize(0, 0))
}

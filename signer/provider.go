package signer

import (
	"fmt"

	"github.com/coinsendorg/libcoinsend-go/keys"
	"github.com/coinsendorg/libcoinsend-go/source"
)

// Provider is the per-payment signing capability handed to the transaction
// engine: a pure function from raw funding address to Signer, closed over
// the key set and passphrase captured when the payment was authorized.
//
// It only answers for addresses inside the payment's resolved funding set;
// anything else is an internal-invariant fault, since the orchestrator
// builds the funding map from the same resolution the engine selects from.
type Provider struct {
	keySet     []keys.SecretKey
	passphrase string
	funding    map[string]source.AddressMeta
}

// NewProvider creates a Provider scoped to one payment's funding map
// (raw address -> address metadata).
func NewProvider(keySet []keys.SecretKey, passphrase string, funding map[string]source.AddressMeta) *Provider {
	return &Provider{keySet: keySet, passphrase: passphrase, funding: funding}
}

// SignerFor derives the signer for a raw funding address. The derivation is
// performed on demand, once per request, so the engine only pays the
// passphrase KDF for addresses it actually selects inputs from.
func (p *Provider) SignerFor(address string) (*Signer, error) {
	meta, ok := p.funding[address]
	if !ok {
		return nil, fmt.Errorf("%w: address %s not in funding set", ErrOutsideFundingSet, address)
	}
	return Derive(p.keySet, p.passphrase, meta)
}

// Package source models the funding scope of a payment: a single address,
// one account, or a whole wallet, and resolves any of those into the
// concrete address set that may fund a transaction.
package source

import "fmt"

// WalletID identifies a wallet in the directory.
type WalletID string

// AccountID identifies one account within a wallet.
type AccountID struct {
	Wallet WalletID `json:"wallet"`
	Index  uint32   `json:"index"`
}

// String returns a human-readable form, e.g. "w1/0".
func (a AccountID) String() string {
	return fmt.Sprintf("%s/%d", a.Wallet, a.Index)
}

// AddressMeta binds a wallet-visible address to its owning account.
// It is read-only from this package's perspective; the directory owns it.
type AddressMeta struct {
	Address string    `json:"address"` // base58 on-chain address
	Account AccountID `json:"account"`
}

// Kind discriminates the MoneySource variants.
type Kind int

const (
	// KindAddress funds from exactly one address.
	KindAddress Kind = iota
	// KindAccount funds from all addresses of one account.
	KindAccount
	// KindWallet funds from all addresses of all accounts of one wallet.
	KindWallet
)

// MoneySource is a closed tagged union over the three funding scopes.
// Construct values with FromAddress, FromAccount or FromWallet.
type MoneySource struct {
	kind    Kind
	addr    AddressMeta
	account AccountID
	wallet  WalletID
}

// FromAddress builds a MoneySource funding from a single address.
func FromAddress(meta AddressMeta) MoneySource {
	return MoneySource{kind: KindAddress, addr: meta}
}

// FromAccount builds a MoneySource funding from one account.
func FromAccount(id AccountID) MoneySource {
	return MoneySource{kind: KindAccount, account: id}
}

// FromWallet builds a MoneySource funding from an entire wallet.
func FromWallet(id WalletID) MoneySource {
	return MoneySource{kind: KindWallet, wallet: id}
}

// Kind returns the variant tag.
func (s MoneySource) Kind() Kind { return s.kind }

// Wallet returns the wallet the source belongs to. This is a pure
// structural projection and never fails: every variant carries its wallet.
func (s MoneySource) Wallet() WalletID {
	switch s.kind {
	case KindAddress:
		return s.addr.Account.Wallet
	case KindAccount:
		return s.account.Wallet
	default:
		return s.wallet
	}
}

package source

import (
	"context"
	"fmt"
)

// Directory lists the wallet/account/address relations this package
// resolves over. Implementations must return stable orderings across
// repeated calls within one resolution.
type Directory interface {
	// Accounts returns the account ids owned by a wallet, in stable order.
	Accounts(ctx context.Context, wallet WalletID) ([]AccountID, error)

	// Addresses returns the address metadata of an account, in stable order.
	Addresses(ctx context.Context, account AccountID) ([]AddressMeta, error)

	// OwnsAddress reports whether the wallet owns the given raw address.
	OwnsAddress(ctx context.Context, wallet WalletID, address string) (bool, error)
}

// Resolver turns a MoneySource into concrete address sets and the
// representative account used for change and fee bookkeeping.
type Resolver struct {
	dir Directory
}

// NewResolver creates a Resolver over the given directory.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// ResolveAddresses returns the non-empty set of addresses that may fund a
// payment from src. A wallet source expands through its accounts in account
// order, concatenating each account's addresses. Returns ErrEmptySource if
// resolution yields zero addresses and ErrNoAccounts for a wallet that owns
// no accounts.
func (r *Resolver) ResolveAddresses(ctx context.Context, src MoneySource) ([]AddressMeta, error) {
	switch src.Kind() {
	case KindAddress:
		return []AddressMeta{src.addr}, nil

	case KindAccount:
		metas, err := r.dir.Addresses(ctx, src.account)
		if err != nil {
			return nil, fmt.Errorf("source: list addresses of %s: %w", src.account, err)
		}
		if len(metas) == 0 {
			return nil, fmt.Errorf("%w: account %s", ErrEmptySource, src.account)
		}
		return metas, nil

	case KindWallet:
		accounts, err := r.dir.Accounts(ctx, src.wallet)
		if err != nil {
			return nil, fmt.Errorf("source: list accounts of %q: %w", src.wallet, err)
		}
		if len(accounts) == 0 {
			return nil, fmt.Errorf("%w: wallet %q", ErrNoAccounts, src.wallet)
		}
		var all []AddressMeta
		for _, acc := range accounts {
			metas, err := r.ResolveAddresses(ctx, FromAccount(acc))
			if err != nil {
				return nil, err
			}
			all = append(all, metas...)
		}
		return all, nil

	default:
		return nil, ErrUnknownKind
	}
}

// RepresentativeAccount returns the account attributed to a payment for
// change and fee bookkeeping: the source's own account for address and
// account scopes, and the first account (stable directory order) for a
// wallet scope. Returns ErrNoAccounts for a wallet with no accounts.
func (r *Resolver) RepresentativeAccount(ctx context.Context, src MoneySource) (AccountID, error) {
	switch src.Kind() {
	case KindAddress:
		return src.addr.Account, nil

	case KindAccount:
		return src.account, nil

	case KindWallet:
		accounts, err := r.dir.Accounts(ctx, src.wallet)
		if err != nil {
			return AccountID{}, fmt.Errorf("source: list accounts of %q: %w", src.wallet, err)
		}
		if len(accounts) == 0 {
			return AccountID{}, fmt.Errorf("%w: wallet %q", ErrNoAccounts, src.wallet)
		}
		return accounts[0], nil

	default:
		return AccountID{}, ErrUnknownKind
	}
}

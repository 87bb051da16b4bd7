package source

import "errors"

var (
	// ErrEmptySource indicates resolution yielded zero funding addresses.
	ErrEmptySource = errors.New("source: no addresses in funding source")

	// ErrNoAccounts indicates a wallet-scoped source owns zero accounts.
	ErrNoAccounts = errors.New("source: wallet has no accounts")

	// ErrUnknownKind indicates a MoneySource with an invalid variant tag.
	ErrUnknownKind = errors.New("source: unknown money source kind")
)

package dispatch

import "errors"

var (
	// ErrServiceDisabled indicates transaction creation is switched off by
	// configuration. Checked before any other work.
	ErrServiceDisabled = errors.New("dispatch: transaction creation disabled")

	// ErrAuthenticationFailed indicates the passphrase does not decrypt the
	// wallet's root key.
	ErrAuthenticationFailed = errors.New("dispatch: authentication failed")

	// ErrNoFundingAddresses indicates the money source resolved to an empty
	// funding set.
	ErrNoFundingAddresses = errors.New("dispatch: no funding addresses")

	// ErrInvalidDestination indicates an empty or zero-amount destination.
	ErrInvalidDestination = errors.New("dispatch: invalid destination")

	// ErrTxCreationFailed wraps any failure between input selection and
	// broadcast.
	ErrTxCreationFailed = errors.New("dispatch: cannot send transaction")

	// ErrFeeEstimation wraps failures during fee quoting.
	ErrFeeEstimation = errors.New("dispatch: cannot estimate fee")

	// errAddressCodec indicates an address from our own directory failed to
	// parse. This is an internal-invariant fault, never caller error.
	errAddressCodec = errors.New("dispatch: funding address codec fault")
)

package recipient

import "errors"

var (
	// ErrInvalidHandle indicates a handle that is not "alias@domain".
	ErrInvalidHandle = errors.New("recipient: invalid handle")

	// ErrHandleNotFound indicates the domain does not know the alias.
	ErrHandleNotFound = errors.New("recipient: handle not found")

	// ErrResolutionFailed indicates the domain's resolver endpoint could not
	// be reached or returned an unusable response.
	ErrResolutionFailed = errors.New("recipient: resolution failed")

	// ErrInvalidAddress indicates the endpoint returned a malformed address.
	ErrInvalidAddress = errors.New("recipient: invalid address")

	// ErrDNSSECValidationFailed indicates the upstream resolver did not
	// authenticate the SRV answer.
	ErrDNSSECValidationFailed = errors.New("recipient: DNSSEC validation failed")
)

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidNodeURL indicates the node RPC endpoint is malformed.
	ErrInvalidNodeURL = errors.New("config: invalid node URL")

	// ErrInvalidNodeRPS indicates the node rate limit is zero or negative.
	ErrInvalidNodeRPS = errors.New("config: node RPS must be positive")

	// ErrInvalidSendInterval indicates a negative send interval.
	ErrInvalidSendInterval = errors.New("config: send interval must not be negative")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")
)

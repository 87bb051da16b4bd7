package engine

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil or empty.
	ErrNilParam = errors.New("engine: required parameter is nil")

	// ErrNoOutputs indicates the destination distribution is empty.
	ErrNoOutputs = errors.New("engine: no outputs")

	// ErrInvalidOutput indicates an output with a zero amount or empty address.
	ErrInvalidOutput = errors.New("engine: invalid output")

	// ErrInsufficientFunds indicates the funding addresses cannot cover
	// the outputs plus fees with unreserved UTXOs.
	ErrInsufficientFunds = errors.New("engine: insufficient funds")

	// ErrInvalidAddress indicates an address failed base58 decoding.
	ErrInvalidAddress = errors.New("engine: invalid address")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("engine: script build failed")

	// ErrSigningFailed indicates transaction signing failed.
	ErrSigningFailed = errors.New("engine: signing failed")
)

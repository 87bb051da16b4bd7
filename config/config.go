// Package config holds the payment dispatch configuration. Values are
// injected explicitly into constructors rather than read from ambient
// state, so tests can toggle them per case.
package config

import "time"

// Config carries every knob the dispatch core and its collaborators need.
type Config struct {
	Network string `json:"network"`  // "mainnet", "testnet" or "regtest"
	DataDir string `json:"data_dir"` // bbolt databases live here

	NodeURL      string `json:"node_url"` // JSON-RPC endpoint of the node
	NodeUser     string `json:"node_user"`
	NodePassword string `json:"-"`
	NodeRPS      int    `json:"node_rps"` // node RPC calls per second

	FeeRate      uint64        `json:"fee_rate"`      // sat/KB, 0 = engine default
	SendInterval time.Duration `json:"send_interval"` // floor between payment call starts

	// TxCreationDisabled administratively disables payment creation.
	// When set, NewPayment fails before touching any wallet state.
	TxCreationDisabled bool `json:"tx_creation_disabled"`

	LogLevel string `json:"log_level"`
}

// Default returns a Config with production defaults. DataDir and NodeURL
// must still be filled in by the caller.
func Default() Config {
	return Config{
		Network:      "mainnet",
		NodeRPS:      10,
		SendInterval: 6 * time.Second,
		LogLevel:     "info",
	}
}

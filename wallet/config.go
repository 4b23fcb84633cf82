package wallet

import (
	"log/slog"

	"github.com/satbag/cashuwallet/crypto"
)

// Config is the construction-time configuration for a Wallet: the mint
// it is scoped to and that mint's keyset. See spec §4.6/§6.
type Config struct {
	MintURL string
	Keys    crypto.MintKeySet

	// Client is the mint RPC surface this wallet will drive. If nil,
	// NewWallet constructs an HTTPClient against MintURL.
	Client MintClient

	// Pending persists in-flight (outputs, secrets, rs) across the
	// hazardous window described in spec §7. If nil, an in-memory store
	// is used — fine for tests, not for recovering from a crash mid-RPC,
	// since its contents do not survive the process.
	Pending PendingStore

	// ClientForMint builds a MintClient for a mint other than MintURL,
	// consulted only by Receive when a token entry names a foreign
	// mint. If nil, Receive constructs an HTTPClient against that mint's
	// URL when it needs one. Tests substitute this to stand in a second in-process
	// mock mint without any real HTTP.
	ClientForMint func(mintURL string) MintClient

	Logger *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

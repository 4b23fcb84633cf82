package wallet

import (
	"context"

	"github.com/satbag/cashuwallet/cashu"
	"github.com/satbag/cashuwallet/cashu/nuts/nut03"
	"github.com/satbag/cashuwallet/cashu/nuts/nut04"
	"github.com/satbag/cashuwallet/cashu/nuts/nut05"
	"github.com/satbag/cashuwallet/crypto"
)

// MintClient is the typed RPC surface the wallet engine depends on. It
// is a capability the wallet receives at construction rather than a
// concrete type it imports back, so transport is pluggable and tests can
// substitute a mock. See spec §4.5/§9.
type MintClient interface {
	GetKeys(ctx context.Context) (*crypto.MintKeySet, error)
	RequestMint(ctx context.Context, amount uint64) (*nut04.RequestMintResponse, error)
	Mint(ctx context.Context, outputs cashu.BlindedMessages, hash string) (cashu.BlindedSignatures, error)
	Split(ctx context.Context, req nut03.PostSplitRequest) (*nut03.PostSplitResponse, error)
	Melt(ctx context.Context, req nut05.PostMeltRequest) (*nut05.PostMeltResponse, error)
	CheckFees(ctx context.Context, pr string) (uint64, error)
	CheckSpent(ctx context.Context, secrets []string) ([]bool, error)
}

package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/satbag/cashuwallet/cashu"
)

// NetworkError wraps a transport failure below the mint contract (spec
// §7), as distinct from a MintError, which is an application-level
// rejection the mint returned deliberately.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Re-exported so callers only need to import the wallet package for the
// taxonomy in spec §7, even though the underlying sentinels live in
// cashu (shared with the token codec and denomination algebra).
var (
	ErrInsufficientFunds = cashu.ErrInsufficientFunds
	ErrInvalidKeyset     = cashu.ErrInvalidKeyset
	ErrMalformedToken    = cashu.ErrMalformedToken
	ErrCryptoFailure     = cashu.ErrCryptoFailure
	ErrCancelled         = cashu.ErrCancelled
)

// MintError is the application-level error a mint returns, e.g.
// ProofsInvalid, InvoiceNotPaid, PaymentFailed.
type MintError = cashu.MintError

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

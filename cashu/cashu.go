// Package cashu contains the core structs and protocol logic of the
// Cashu BDHKE wallet: denominations, blinded messages/signatures, proofs,
// and the errors the mint contract can return.
package cashu

import (
	"errors"
	"math"
)

// Unit is the asset unit a keyset and its proofs are denominated in.
// This wallet only ever speaks sat.
type Unit int

const Sat Unit = iota

func (u Unit) String() string {
	switch u {
	case Sat:
		return "sat"
	default:
		return "unknown"
	}
}

// BlindedMessage is the client's blinded output: B_ = Y + rG, tagged with
// the denomination it should be signed for and the keyset the mint should
// use. See spec §3 BlindedMessage.
type BlindedMessage struct {
	Amount uint64 `json:"amount"`
	Id     string `json:"id"`
	B_     string `json:"B_"`
}

type BlindedMessages []BlindedMessage

// AmountChecked sums the denominations of a set of blinded messages,
// erroring on uint64 overflow rather than silently wrapping.
func (bm BlindedMessages) AmountChecked() (uint64, error) {
	var total uint64
	for _, msg := range bm {
		var overflow bool
		total, overflow = OverflowAddUint64(total, msg.Amount)
		if overflow {
			return 0, ErrAmountOverflows
		}
	}
	return total, nil
}

// BlindedSignature (Promise) is the mint's reply to a BlindedMessage,
// prior to unblinding. See spec §3 BlindedSignature.
type BlindedSignature struct {
	Amount uint64 `json:"amount"`
	Id     string `json:"id"`
	C_     string `json:"C_"`
}

type BlindedSignatures []BlindedSignature

func (bs BlindedSignatures) Amount() uint64 {
	var total uint64
	for _, sig := range bs {
		total += sig.Amount
	}
	return total
}

// Proof is a bearer token: an unblinded BDHKE signature over secret,
// under the mint's private key for Amount. See spec §3 Proof.
type Proof struct {
	Amount uint64 `json:"amount"`
	Id     string `json:"id"`
	Secret string `json:"secret"`
	C      string `json:"C"`
}

type Proofs []Proof

func (proofs Proofs) Amount() uint64 {
	var total uint64
	for _, p := range proofs {
		total += p.Amount
	}
	return total
}

// CheckDuplicateProofs reports whether any two proofs in the set share
// the same (secret, C) pair.
func CheckDuplicateProofs(proofs Proofs) bool {
	seen := make(map[[2]string]bool, len(proofs))
	for _, p := range proofs {
		key := [2]string{p.Secret, p.C}
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

// AmountSplit decomposes amount into its ascending binary decomposition,
// e.g. 13 -> [1, 4, 8]. Every mint-recognized denomination is a power of
// two, so this is also the set of outputs any issuance must produce.
func AmountSplit(amount uint64) []uint64 {
	split := make([]uint64, 0)
	for pos := 0; amount > 0; pos++ {
		if amount&1 == 1 {
			split = append(split, 1<<pos)
		}
		amount >>= 1
	}
	return split
}

// BlankOutputCount returns the number of blank (amount=0) outputs a melt
// should carry to receive change: ceil(log2(feeReserve)), 0 for
// feeReserve == 0. feeReserve == 1 also evaluates to 0 (ceil(log2(1)) ==
// 0) — that is the spec's own behavior, not a truncation bug to "fix";
// it means a 1-sat fee reserve can never return change.
func BlankOutputCount(feeReserve uint64) int {
	if feeReserve == 0 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(feeReserve))))
}

// OverflowAddUint64 adds a and b, reporting whether the result overflowed
// uint64 range.
func OverflowAddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}

var (
	ErrAmountOverflows = errors.New("amount overflows uint64")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidKeyset     = errors.New("promise references an amount with no key in keyset")
	ErrMalformedToken    = errors.New("malformed token")
	ErrCryptoFailure     = errors.New("cryptographic operation failed")
	ErrCancelled         = errors.New("operation cancelled")
)

// CashuErrCode identifies the class of error the mint returned, mirroring
// the codes real mints use so callers can branch on it without parsing
// Detail strings.
type CashuErrCode int

const (
	StandardErrCode      CashuErrCode = 10000
	ProofAlreadyUsedCode CashuErrCode = 11001
	InvoiceNotPaidCode   CashuErrCode = 20001
	PaymentFailedCode    CashuErrCode = 20009
)

// MintError represents an application-level error returned by the mint,
// as opposed to a transport failure below the mint contract.
type MintError struct {
	Detail string       `json:"detail"`
	Code   CashuErrCode `json:"code"`
}

func (e MintError) Error() string {
	return e.Detail
}

func NewMintError(detail string, code CashuErrCode) *MintError {
	return &MintError{Detail: detail, Code: code}
}

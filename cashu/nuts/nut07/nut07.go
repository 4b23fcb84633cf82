// Package nut07 contains the wire shapes for the mint's spend-check
// endpoint (POST /check). Only the secret is ever sent — never the
// unblinded C or the amount — so the mint learns nothing about a proof's
// value while checking whether it has already been spent. See spec
// §4.5/§4.6 checkProofsSpent and §8 invariant 7.
//
// [NUT-07]: https://github.com/cashubtc/nuts/blob/main/07.md
package nut07

type CheckSecret struct {
	Secret string `json:"secret"`
}

type PostCheckRequest struct {
	Proofs []CheckSecret `json:"proofs"`
}

// PostCheckResponse reports spendability positionally: Spendable[i]
// corresponds to PostCheckRequest.Proofs[i].
type PostCheckResponse struct {
	Spendable []bool `json:"spendable"`
}

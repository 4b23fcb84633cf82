// Package nut03 contains the wire shapes for the mint's split endpoint
// (POST /split): the proofs to melt in, the split point, and the
// blinded outputs for both halves, with the mint's two resulting
// signature sets returned positionally. See spec §4.5/§4.6 split
// sub-protocol.
//
// [NUT-03]: https://github.com/cashubtc/nuts/blob/main/03.md
package nut03

import "github.com/satbag/cashuwallet/cashu"

type PostSplitRequest struct {
	Proofs  cashu.Proofs          `json:"proofs"`
	Amount  uint64                `json:"amount"`
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostSplitResponse struct {
	Fst cashu.BlindedSignatures `json:"fst"`
	Snd cashu.BlindedSignatures `json:"snd"`
}

// Package nut05 contains the wire shapes for the mint's Lightning
// payment (melt) and fee-estimation endpoints: POST /checkfees and
// POST /melt. See spec §4.5/§4.6 payLnInvoice.
//
// [NUT-05]: https://github.com/cashubtc/nuts/blob/main/05.md
package nut05

import "github.com/satbag/cashuwallet/cashu"

type CheckFeesRequest struct {
	PR string `json:"pr"`
}

type CheckFeesResponse struct {
	Fee uint64 `json:"fee"`
}

type PostMeltRequest struct {
	PR      string                `json:"pr"`
	Proofs  cashu.Proofs          `json:"proofs"`
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostMeltResponse struct {
	Paid     bool                    `json:"paid"`
	Preimage string                  `json:"preimage,omitempty"`
	Change   cashu.BlindedSignatures `json:"change,omitempty"`
}

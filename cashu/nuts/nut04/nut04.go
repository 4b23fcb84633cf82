// Package nut04 contains the wire shapes for the mint's issuance
// endpoints in this wallet's quote-less protocol variant: requesting an
// invoice to mint against (GET /mint?amount=) and redeeming it once paid
// (POST /mint?hash=). See spec §4.5/§4.6 requestTokens.
//
// [NUT-04]: https://github.com/cashubtc/nuts/blob/main/04.md
package nut04

import "github.com/satbag/cashuwallet/cashu"

type RequestMintResponse struct {
	PR   string `json:"pr"`
	Hash string `json:"hash"`
}

type PostMintRequest struct {
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostMintResponse struct {
	Promises cashu.BlindedSignatures `json:"promises"`
}

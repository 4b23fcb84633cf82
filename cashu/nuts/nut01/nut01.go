// Package nut01 contains the wire shape for the mint's key-exchange
// endpoint (GET /keys): the active keyset's id, unit, and denomination
// to public-key mapping. See spec §4.5/§6.
//
// [NUT-01]: https://github.com/cashubtc/nuts/blob/main/01.md
package nut01

import "github.com/satbag/cashuwallet/crypto"

type GetKeysResponse struct {
	Id   string            `json:"id"`
	Unit string            `json:"unit"`
	Keys crypto.PublicKeys `json:"keys"`
}

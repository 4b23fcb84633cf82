package cashu

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// TokenEntry is a non-empty group of proofs issued by the same mint.
// See spec §3 TokenEntry.
type TokenEntry struct {
	Mint   string `json:"mint"`
	Proofs Proofs `json:"proofs"`
}

// Token is the canonical bearer-token bundle: a list of TokenEntry,
// possibly spanning multiple mints. See spec §3 Token.
type Token struct {
	Token []TokenEntry `json:"token"`
}

// Amount sums every proof across every entry.
func (t Token) Amount() uint64 {
	var total uint64
	for _, entry := range t.Token {
		total += entry.Proofs.Amount()
	}
	return total
}

// NewToken builds a single-entry token for proofs issued by mint.
func NewToken(proofs Proofs, mint string) Token {
	return Token{Token: []TokenEntry{{Mint: mint, Proofs: proofs}}}
}

const (
	tokenV3Prefix = "cashuA"
	tokenV4Prefix = "cashuB"
)

// Serialize encodes t in the canonical V3 transport form:
// "cashuA" || base64url(JSON(Token)), no padding. See spec §4.4/§6.
func (t Token) Serialize() (string, error) {
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}
	return tokenV3Prefix + base64.RawURLEncoding.EncodeToString(jsonBytes), nil
}

// tokenV4 mirrors the CBOR token format some newer mints emit. It is
// decode-only here: this wallet never produces it, only reads it, so a
// token minted by a newer-protocol mint doesn't fail closed on receive.
type tokenV4 struct {
	TokenProofs []tokenV4Entry `cbor:"t"`
	MintURL     string         `cbor:"m"`
	Unit        string         `cbor:"u"`
}

type tokenV4Entry struct {
	Id     []byte        `cbor:"i"`
	Proofs []tokenV4Proof `cbor:"p"`
}

type tokenV4Proof struct {
	Amount uint64 `cbor:"a"`
	Secret string `cbor:"s"`
	C      []byte `cbor:"c"`
}

func (t tokenV4) toToken() Token {
	entries := make([]TokenEntry, 0, len(t.TokenProofs))
	for _, e := range t.TokenProofs {
		id := hex.EncodeToString(e.Id)
		proofs := make(Proofs, len(e.Proofs))
		for i, p := range e.Proofs {
			proofs[i] = Proof{
				Amount: p.Amount,
				Id:     id,
				Secret: p.Secret,
				C:      hex.EncodeToString(p.C),
			}
		}
		entries = append(entries, TokenEntry{Mint: t.MintURL, Proofs: proofs})
	}
	return Token{Token: entries}
}

// DecodeToken decodes a token string in either the canonical V3 form or,
// for read compatibility, the V4 CBOR form. An absent "cashuA" prefix is
// tolerated for backward compatibility, per spec §4.4.
func DecodeToken(tokenStr string) (Token, error) {
	switch {
	case strings.HasPrefix(tokenStr, tokenV4Prefix):
		payload := tokenStr[len(tokenV4Prefix):]
		raw, err := decodeBase64url(payload)
		if err != nil {
			return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
		var v4 tokenV4
		if err := cbor.Unmarshal(raw, &v4); err != nil {
			return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
		return v4.toToken(), nil
	default:
		payload := strings.TrimPrefix(tokenStr, tokenV3Prefix)
		raw, err := decodeBase64url(payload)
		if err != nil {
			return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
		var t Token
		if err := json.Unmarshal(raw, &t); err != nil {
			return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
		return t, nil
	}
}

// decodeBase64url accepts both padded and unpadded base64url input,
// since the spec mandates producing unpadded but tolerant decoders are
// friendlier to other implementations.
func decodeBase64url(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(padBase64(s))
}

func padBase64(s string) string {
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return s
}

// base64urlFromBase64 converts standard base64 to the URL-safe alphabet,
// dropping padding. base64urlToBase64 is its inverse. Both exist because
// spec §8 invariant 5 requires the mapping be tested as an explicit
// round-trip, independent of whatever encoding package is used above.
func base64urlFromBase64(s string) string {
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	return strings.TrimRight(s, "=")
}

func base64urlToBase64(s string) string {
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	return padBase64(s)
}

// CleanToken drops empty TokenEntry values, coalesces entries with the
// same mint url into one (concatenating their proofs, preserving
// first-seen mint order), and deduplicates proofs by (secret, C) within
// an entry. See spec §4.4.
func CleanToken(t Token) Token {
	order := make([]string, 0, len(t.Token))
	byMint := make(map[string][]Proof, len(t.Token))

	for _, entry := range t.Token {
		if len(entry.Proofs) == 0 {
			continue
		}
		if _, ok := byMint[entry.Mint]; !ok {
			order = append(order, entry.Mint)
		}
		byMint[entry.Mint] = append(byMint[entry.Mint], entry.Proofs...)
	}

	cleaned := make([]TokenEntry, 0, len(order))
	for _, mint := range order {
		proofs := byMint[mint]
		seen := make(map[[2]string]bool, len(proofs))
		deduped := make(Proofs, 0, len(proofs))
		for _, p := range proofs {
			key := [2]string{p.Secret, p.C}
			if seen[key] {
				continue
			}
			seen[key] = true
			deduped = append(deduped, p)
		}
		cleaned = append(cleaned, TokenEntry{Mint: mint, Proofs: deduped})
	}

	return Token{Token: cleaned}
}

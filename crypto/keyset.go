package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// MaxOrder bounds the denominations a keyset may carry: 2^0 .. 2^(MaxOrder-1).
const MaxOrder = 32

// MintKeySet is a wallet-side view of a mint's keyset: the public points
// the mint uses to sign each denomination. It never holds private keys;
// the mint is the only party that knows k.
type MintKeySet struct {
	Id      string
	Unit    string
	Active  bool
	Keys    PublicKeys
	MintURL string
}

// Key looks up the mint's public key for amount, reporting whether the
// keyset recognizes that denomination at all.
func (ks *MintKeySet) Key(amount uint64) (*secp256k1.PublicKey, bool) {
	k, ok := ks.Keys[amount]
	return k, ok
}

// PublicKeys maps a denomination to the mint's public key for it.
type PublicKeys map[uint64]*secp256k1.PublicKey

// MarshalJSON writes keys sorted by amount, matching the wire format
// the mint itself uses so two encoders of the same keyset agree byte
// for byte.
func (pks PublicKeys) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	amounts := make([]uint64, 0, len(pks))
	for amount := range pks {
		amounts = append(amounts, amount)
	}
	slices.Sort(amounts)

	for i, amount := range amounts {
		if i != 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", fmt.Sprintf("%d", amount))
		key := hex.EncodeToString(pks[amount].SerializeCompressed())
		val, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (pks *PublicKeys) UnmarshalJSON(data []byte) error {
	var raw map[uint64]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(PublicKeys, len(raw))
	for amount, hexKey := range raw {
		keyBytes, err := hex.DecodeString(hexKey)
		if err != nil {
			return err
		}
		pubkey, err := secp256k1.ParsePubKey(keyBytes)
		if err != nil {
			return fmt.Errorf("invalid public key for amount %d: %v", amount, err)
		}
		out[amount] = pubkey
	}
	*pks = out
	return nil
}

// DeriveKeysetId derives the short opaque id the mint assigns a keyset:
// sort public keys by amount, concatenate their compressed form, sha256,
// take the first 14 hex chars, prefix with a version byte. This must
// match the mint's own derivation exactly. Nothing in this module
// compares the result with a fetched keyset's advertised id; key
// pinning is the caller's responsibility.
func DeriveKeysetId(keys PublicKeys) string {
	type entry struct {
		amount uint64
		pk     *secp256k1.PublicKey
	}

	entries := make([]entry, 0, len(keys))
	for amount, pk := range keys {
		entries = append(entries, entry{amount, pk})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].amount < entries[j].amount })

	buf := make([]byte, 0, len(entries)*33)
	for _, e := range entries {
		buf = append(buf, e.pk.SerializeCompressed()...)
	}

	hash := sha256.Sum256(buf)
	return "00" + hex.EncodeToString(hash[:])[:14]
}

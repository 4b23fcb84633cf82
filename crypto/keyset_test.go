package crypto

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func testKeys(t *testing.T) PublicKeys {
	t.Helper()
	keys := make(PublicKeys)
	for i := uint64(0); i < 4; i++ {
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			t.Fatalf("GeneratePrivateKey: %v", err)
		}
		keys[1<<i] = priv.PubKey()
	}
	return keys
}

func TestMintKeySetKey(t *testing.T) {
	keys := testKeys(t)
	ks := MintKeySet{Id: "00test", Keys: keys}

	for amount, want := range keys {
		got, ok := ks.Key(amount)
		if !ok {
			t.Fatalf("Key(%d): not found", amount)
		}
		if !got.IsEqual(want) {
			t.Errorf("Key(%d): got different key", amount)
		}
	}

	if _, ok := ks.Key(3); ok {
		t.Error("Key(3): expected ok=false for a non-power-of-two denomination")
	}
}

func TestPublicKeysMarshalUnmarshal(t *testing.T) {
	keys := testKeys(t)

	data, err := json.Marshal(keys)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out PublicKeys
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(out) != len(keys) {
		t.Fatalf("got %d keys, want %d", len(out), len(keys))
	}
	for amount, pk := range keys {
		got, ok := out[amount]
		if !ok {
			t.Fatalf("amount %d missing after round-trip", amount)
		}
		if hex.EncodeToString(got.SerializeCompressed()) != hex.EncodeToString(pk.SerializeCompressed()) {
			t.Errorf("amount %d: key changed across round-trip", amount)
		}
	}
}

func TestDeriveKeysetIdDeterministic(t *testing.T) {
	keys := testKeys(t)

	id1 := DeriveKeysetId(keys)
	id2 := DeriveKeysetId(keys)
	if id1 != id2 {
		t.Fatalf("DeriveKeysetId is not deterministic: %v != %v", id1, id2)
	}
	if id1[:2] != "00" {
		t.Errorf("expected version prefix '00', got %q", id1[:2])
	}
	if len(id1) != 16 {
		t.Errorf("expected a 16-char id, got %d chars", len(id1))
	}
}

func TestDeriveKeysetIdOrderIndependent(t *testing.T) {
	keys := testKeys(t)
	id := DeriveKeysetId(keys)

	// Rebuilding the same map from iteration order shouldn't matter since
	// DeriveKeysetId always sorts by amount before hashing.
	reordered := make(PublicKeys, len(keys))
	for amount, pk := range keys {
		reordered[amount] = pk
	}

	if got := DeriveKeysetId(reordered); got != id {
		t.Errorf("DeriveKeysetId changed for an equivalent map: %v != %v", got, id)
	}
}

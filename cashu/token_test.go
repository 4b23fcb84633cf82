package cashu

import (
	"encoding/base64"
	"reflect"
	"testing"
)

func sampleToken() Token {
	return NewToken(Proofs{
		{Amount: 1, Id: "00test", Secret: "s1", C: "c1"},
		{Amount: 4, Id: "00test", Secret: "s2", C: "c2"},
	}, "https://mint.example.com")
}

func TestTokenSerializeDecodeRoundTrip(t *testing.T) {
	token := sampleToken()

	encoded, err := token.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if encoded[:len(tokenV3Prefix)] != tokenV3Prefix {
		t.Fatalf("encoded token missing %q prefix: %q", tokenV3Prefix, encoded)
	}

	decoded, err := DecodeToken(encoded)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if !reflect.DeepEqual(decoded, token) {
		t.Errorf("round-tripped token differs:\ngot  %+v\nwant %+v", decoded, token)
	}
}

func TestDecodeTokenMissingPrefix(t *testing.T) {
	token := sampleToken()
	encoded, err := token.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	withoutPrefix := encoded[len(tokenV3Prefix):]
	decoded, err := DecodeToken(withoutPrefix)
	if err != nil {
		t.Fatalf("DecodeToken without prefix: %v", err)
	}
	if !reflect.DeepEqual(decoded, token) {
		t.Errorf("token decoded without prefix differs from original")
	}
}

func TestDecodeTokenMalformed(t *testing.T) {
	if _, err := DecodeToken("cashuAnot-valid-base64url!!"); err == nil {
		t.Error("expected an error decoding a malformed token")
	}
}

func TestCleanTokenDropsEmptyEntries(t *testing.T) {
	token := Token{Token: []TokenEntry{
		{Mint: "https://a", Proofs: nil},
		{Mint: "https://b", Proofs: Proofs{{Amount: 1, Secret: "s", C: "c"}}},
	}}

	cleaned := CleanToken(token)
	if len(cleaned.Token) != 1 {
		t.Fatalf("expected 1 entry after cleaning, got %d", len(cleaned.Token))
	}
	if cleaned.Token[0].Mint != "https://b" {
		t.Errorf("expected surviving entry to be for https://b, got %q", cleaned.Token[0].Mint)
	}
}

func TestCleanTokenCoalescesByMint(t *testing.T) {
	token := Token{Token: []TokenEntry{
		{Mint: "https://a", Proofs: Proofs{{Amount: 1, Secret: "s1", C: "c1"}}},
		{Mint: "https://b", Proofs: Proofs{{Amount: 2, Secret: "s2", C: "c2"}}},
		{Mint: "https://a", Proofs: Proofs{{Amount: 4, Secret: "s3", C: "c3"}}},
	}}

	cleaned := CleanToken(token)
	if len(cleaned.Token) != 2 {
		t.Fatalf("expected 2 entries (coalesced by mint), got %d", len(cleaned.Token))
	}
	if cleaned.Token[0].Mint != "https://a" {
		t.Fatalf("expected first-seen mint order preserved, got %q first", cleaned.Token[0].Mint)
	}
	if len(cleaned.Token[0].Proofs) != 2 {
		t.Errorf("expected mint a's proofs coalesced into 2, got %d", len(cleaned.Token[0].Proofs))
	}
}

func TestCleanTokenDedupesBySecretAndC(t *testing.T) {
	token := Token{Token: []TokenEntry{
		{Mint: "https://a", Proofs: Proofs{
			{Amount: 1, Secret: "s1", C: "c1"},
			{Amount: 1, Secret: "s1", C: "c1"},
			{Amount: 2, Secret: "s2", C: "c2"},
		}},
	}}

	cleaned := CleanToken(token)
	if len(cleaned.Token[0].Proofs) != 2 {
		t.Errorf("expected duplicate (secret, C) pair removed, got %d proofs", len(cleaned.Token[0].Proofs))
	}
}

func TestBase64urlBase64RoundTrip(t *testing.T) {
	tests := []string{
		"hello",
		"hello world, this needs padding",
		"",
	}

	for _, plain := range tests {
		std := base64.StdEncoding.EncodeToString([]byte(plain))
		url := base64urlFromBase64(std)
		back := base64urlToBase64(url)
		if back != std {
			t.Errorf("base64urlToBase64(base64urlFromBase64(%q)) = %q, want %q", std, back, std)
		}
	}
}

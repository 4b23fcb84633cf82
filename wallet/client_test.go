package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/satbag/cashuwallet/cashu"
	"github.com/satbag/cashuwallet/cashu/nuts/nut01"
	"github.com/satbag/cashuwallet/cashu/nuts/nut03"
	"github.com/satbag/cashuwallet/crypto"
)

func testKeys(t *testing.T) crypto.PublicKeys {
	t.Helper()
	keys := make(crypto.PublicKeys)
	for i := uint64(0); i < 4; i++ {
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			t.Fatalf("GeneratePrivateKey: %v", err)
		}
		keys[1<<i] = priv.PubKey()
	}
	return keys
}

func TestHTTPClientGetKeys(t *testing.T) {
	keys := testKeys(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/keys" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(nut01.GetKeysResponse{Id: "00test", Unit: "sat", Keys: keys})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	got, err := client.GetKeys(context.Background())
	if err != nil {
		t.Fatalf("GetKeys: %v", err)
	}
	if got.Id != "00test" || got.Unit != "sat" || !got.Active {
		t.Errorf("unexpected keyset: %+v", got)
	}
	if len(got.Keys) != len(keys) {
		t.Errorf("got %d keys, want %d", len(got.Keys), len(keys))
	}
}

func TestHTTPClientMintErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(cashu.MintError{Detail: "invoice not paid", Code: cashu.InvoiceNotPaidCode})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.Mint(context.Background(), cashu.BlindedMessages{{Amount: 1}}, "somehash")
	if err == nil {
		t.Fatal("expected an error")
	}

	var mintErr *cashu.MintError
	if !asMintError(err, &mintErr) {
		t.Fatalf("expected a *cashu.MintError, got %T: %v", err, err)
	}
	if mintErr.Code != cashu.InvoiceNotPaidCode {
		t.Errorf("got code %v, want %v", mintErr.Code, cashu.InvoiceNotPaidCode)
	}
}

func asMintError(err error, target **cashu.MintError) bool {
	if me, ok := err.(*cashu.MintError); ok {
		*target = me
		return true
	}
	return false
}

func TestHTTPClientCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(nut01.GetKeysResponse{})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetKeys(ctx)
	if err != ErrCancelled {
		t.Errorf("got %v, want ErrCancelled", err)
	}
}

func TestHTTPClientSplit(t *testing.T) {
	var gotReq nut03.PostSplitRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/split" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(nut03.PostSplitResponse{
			Fst: cashu.BlindedSignatures{{Amount: 1}},
			Snd: cashu.BlindedSignatures{{Amount: 2}},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	req := nut03.PostSplitRequest{
		Proofs:  cashu.Proofs{{Amount: 3, Secret: "s"}},
		Amount:  2,
		Outputs: cashu.BlindedMessages{{Amount: 1}, {Amount: 2}},
	}
	resp, err := client.Split(context.Background(), req)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(resp.Fst) != 1 || len(resp.Snd) != 1 {
		t.Errorf("unexpected split response: %+v", resp)
	}
	if gotReq.Amount != 2 {
		t.Errorf("server saw amount %d, want 2", gotReq.Amount)
	}
}

package storage

import (
	"reflect"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/satbag/cashuwallet/cashu"
	"github.com/satbag/cashuwallet/wallet"
)

func testOperation(t *testing.T) wallet.PendingOperation {
	t.Helper()
	r1, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	r2, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}

	return wallet.PendingOperation{
		ID:   "op1",
		Kind: "split",
		Outputs: cashu.BlindedMessages{
			{Amount: 1, Id: "00test", B_: "deadbeef"},
			{Amount: 2, Id: "00test", B_: "beefdead"},
		},
		Secrets: []string{"s1", "s2"},
		Rs:      []*secp256k1.PrivateKey{r1, r2},
	}
}

func TestBoltPendingStoreSaveGetDelete(t *testing.T) {
	store, err := NewBoltPendingStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltPendingStore: %v", err)
	}
	defer store.Close()

	op := testOperation(t)
	if err := store.Save(op); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := store.Get(op.ID)
	if !ok {
		t.Fatal("expected to find saved operation")
	}
	if got.ID != op.ID || got.Kind != op.Kind {
		t.Errorf("got %+v, want id/kind %v/%v", got, op.ID, op.Kind)
	}
	if !reflect.DeepEqual(got.Secrets, op.Secrets) {
		t.Errorf("secrets = %v, want %v", got.Secrets, op.Secrets)
	}
	if len(got.Rs) != len(op.Rs) {
		t.Fatalf("got %d rs, want %d", len(got.Rs), len(op.Rs))
	}
	for i := range op.Rs {
		if got.Rs[i].Key != op.Rs[i].Key {
			t.Errorf("rs[%d] changed across round-trip", i)
		}
	}

	if err := store.Delete(op.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Get(op.ID); ok {
		t.Error("expected operation to be gone after Delete")
	}
}

func TestBoltPendingStoreListAll(t *testing.T) {
	store, err := NewBoltPendingStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltPendingStore: %v", err)
	}
	defer store.Close()

	op1 := testOperation(t)
	op2 := testOperation(t)
	op2.ID = "op2"

	if err := store.Save(op1); err != nil {
		t.Fatalf("Save op1: %v", err)
	}
	if err := store.Save(op2); err != nil {
		t.Fatalf("Save op2: %v", err)
	}

	all, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d operations, want 2", len(all))
	}
}

package wallet

import (
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/satbag/cashuwallet/cashu"
)

// PendingOperation is what must be durable across the hazardous window
// described in spec §7: if the mint commits server-side but the reply is
// lost, the client needs (outputs, rs, secrets) back to reconstruct the
// request and replay it. The mint treats identical outputs as idempotent
// on a given request hash, so replay is safe.
type PendingOperation struct {
	ID      string
	Kind    string // "mint", "split", or "melt"
	Outputs cashu.BlindedMessages
	Secrets []string
	Rs      []*secp256k1.PrivateKey
}

// PendingStore is the persistence seam spec §7 requires to exist. This
// package does not mandate a storage format; see wallet/storage for the
// bbolt-backed reference adapter.
type PendingStore interface {
	Save(op PendingOperation) error
	Delete(id string) error
	Get(id string) (PendingOperation, bool)
}

// memPendingStore is the zero-config default: enough to satisfy the
// interface in tests, but it does not survive a process crash, so it is
// not a substitute for a real PendingStore in production.
type memPendingStore struct {
	mu  sync.Mutex
	ops map[string]PendingOperation
}

func newMemPendingStore() *memPendingStore {
	return &memPendingStore{ops: make(map[string]PendingOperation)}
}

func (s *memPendingStore) Save(op PendingOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops[op.ID] = op
	return nil
}

func (s *memPendingStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ops, id)
	return nil
}

func (s *memPendingStore) Get(id string) (PendingOperation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	return op, ok
}

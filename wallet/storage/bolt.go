// Package storage provides a bbolt-backed PendingStore: the durable
// side of the hazardous-window hook the wallet package defines as an
// interface. See spec §7.
package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/satbag/cashuwallet/cashu"
	"github.com/satbag/cashuwallet/wallet"
	bolt "go.etcd.io/bbolt"
)

const pendingBucket = "pending_operations"

// dbPendingOperation is the on-disk shape of a wallet.PendingOperation:
// rs are stored as hex-encoded scalars since secp256k1.PrivateKey isn't
// itself JSON-marshalable.
type dbPendingOperation struct {
	ID      string                `json:"id"`
	Kind    string                `json:"kind"`
	Outputs cashu.BlindedMessages `json:"outputs"`
	Secrets []string              `json:"secrets"`
	Rs      []string              `json:"rs"`
}

// BoltPendingStore implements wallet.PendingStore on top of bbolt, so
// an in-flight mint/split/melt operation survives a process crash.
type BoltPendingStore struct {
	db *bolt.DB
}

func NewBoltPendingStore(dir string) (*BoltPendingStore, error) {
	db, err := bolt.Open(filepath.Join(dir, "pending.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt.Open: %v", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(pendingBucket))
		return err
	}); err != nil {
		return nil, fmt.Errorf("error creating pending operations bucket: %v", err)
	}

	return &BoltPendingStore{db: db}, nil
}

func (s *BoltPendingStore) Close() error {
	return s.db.Close()
}

func (s *BoltPendingStore) Save(op wallet.PendingOperation) error {
	dbOp := dbPendingOperation{
		ID:      op.ID,
		Kind:    op.Kind,
		Outputs: op.Outputs,
		Secrets: op.Secrets,
		Rs:      make([]string, len(op.Rs)),
	}
	for i, r := range op.Rs {
		dbOp.Rs[i] = hex.EncodeToString(r.Serialize())
	}

	data, err := json.Marshal(dbOp)
	if err != nil {
		return fmt.Errorf("invalid pending operation: %v", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pendingBucket))
		return b.Put([]byte(op.ID), data)
	})
}

func (s *BoltPendingStore) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pendingBucket))
		return b.Delete([]byte(id))
	})
}

func (s *BoltPendingStore) Get(id string) (wallet.PendingOperation, bool) {
	var op wallet.PendingOperation
	var found bool

	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pendingBucket))
		val := b.Get([]byte(id))
		if val == nil {
			return nil
		}

		var dbOp dbPendingOperation
		if err := json.Unmarshal(val, &dbOp); err != nil {
			return nil
		}

		rs := make([]*secp256k1.PrivateKey, len(dbOp.Rs))
		for i, rhex := range dbOp.Rs {
			rbytes, err := hex.DecodeString(rhex)
			if err != nil {
				return nil
			}
			r, _ := secp256k1.PrivKeyFromBytes(rbytes)
			rs[i] = r
		}

		op = wallet.PendingOperation{
			ID:      dbOp.ID,
			Kind:    dbOp.Kind,
			Outputs: dbOp.Outputs,
			Secrets: dbOp.Secrets,
			Rs:      rs,
		}
		found = true
		return nil
	})

	return op, found
}

// ListAll returns every pending operation in the store, for a wallet to
// replay on startup after an unclean shutdown.
func (s *BoltPendingStore) ListAll() ([]wallet.PendingOperation, error) {
	var ops []wallet.PendingOperation

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pendingBucket))
		return b.ForEach(func(k, v []byte) error {
			var dbOp dbPendingOperation
			if err := json.Unmarshal(v, &dbOp); err != nil {
				return err
			}

			rs := make([]*secp256k1.PrivateKey, len(dbOp.Rs))
			for i, rhex := range dbOp.Rs {
				rbytes, err := hex.DecodeString(rhex)
				if err != nil {
					return err
				}
				r, _ := secp256k1.PrivKeyFromBytes(rbytes)
				rs[i] = r
			}

			ops = append(ops, wallet.PendingOperation{
				ID:      dbOp.ID,
				Kind:    dbOp.Kind,
				Outputs: dbOp.Outputs,
				Secrets: dbOp.Secrets,
				Rs:      rs,
			})
			return nil
		})
	})
	return ops, err
}

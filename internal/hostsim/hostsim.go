// Package hostsim provides a test-only host simulator: an in-memory
// hostctx.HostContext fake plus a bbolt-backed durable-root persistence
// simulator, grounded on the teacher's BoltDB storage layer
// (internal/storage/bolt.go) but trimmed to exactly what exercising a
// "global reset" scenario requires — a single bucket holding one
// JSON-encoded blob, not the teacher's baselines/ledger/meta schema.
//
// The kernel packages never import this package; test/integration and
// the cmd/ simulator binaries use it to simulate DurableRoot surviving (or not surviving)
// a process restart without requiring an actual Screeps-style host.
package hostsim

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/screepskernel/kernel/internal/durable"
)

const bucketRoot = "durable_root"
const keyRoot = "root"

// Store persists a durable.Root to a single bbolt bucket/key, simulating
// the host's Memory object surviving across process restarts. Reset
// simulates a "global reset" and leaves the stored bucket untouched.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a bbolt database at path with the bucket this
// Store needs.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("hostsim: open %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRoot))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("hostsim: init bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save serializes root as JSON and writes it to the bucket, simulating
// the host persisting Memory at the end of a tick.
func (s *Store) Save(root durable.Root) error {
	data, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("hostsim: marshal root: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRoot)).Put([]byte(keyRoot), data)
	})
}

// Load reads the persisted root, or returns a fresh empty root (with
// reserved fields present) if nothing was ever saved, simulating a
// fresh global.
func (s *Store) Load() (durable.Root, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketRoot)).Get([]byte(keyRoot))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hostsim: read root: %w", err)
	}
	if data == nil {
		return durable.New(), nil
	}

	root := durable.Root{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("hostsim: unmarshal root: %w", err)
	}
	durable.EnsureReserved(root)
	return root, nil
}

// Reset simulates a global reset: the persisted Memory blob survives (as
// it does in a real Screeps-style host — Memory is not cleared by a code
// reload), but every in-memory, non-durable structure (task generators,
// protocol registry, process registry) is gone. Reset exists for
// documentation/symmetry with the real lifecycle; callers simulate the
// reset itself by discarding their in-memory kernel and rebuilding it
// from Load().
func (s *Store) Reset() error {
	return nil
}

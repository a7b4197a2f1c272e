package objstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketObjects = []byte("objects")
	bucketRefs    = []byte("refs")
	bucketAudit   = []byte("audit")
)

// BoltStore implements Store on top of an embedded BoltDB file, laid out
// as .agit/repo.db relative to the repository root. It is safe for
// concurrent use by multiple goroutines within one process; coordination
// across processes is the advisory lock's job, not this store's.
type BoltStore struct {
	db *bolt.DB
	mu sync.Mutex // serializes audit-id allocation
}

// NewBoltStore opens (creating if absent) the repo.db under dataDir/.agit.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, ".agit", "repo.db")
	if err := ensureDir(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("objstore: create repo dir: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("objstore: open repo.db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketObjects, bucketRefs, bucketAudit} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Put(id ObjectID, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		key := []byte(id.String())
		// Idempotent: identical content hashes to identical bytes (I2),
		// so re-writing an existing key is harmless but skipped anyway.
		if b.Get(key) != nil {
			return nil
		}
		return b.Put(key, data)
	})
}

func (s *BoltStore) Get(id ObjectID) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		data := b.Get([]byte(id.String()))
		if data == nil {
			return ErrNotFound
		}
		out = make([]byte, len(data))
		copy(out, data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Contains(id ObjectID) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketObjects).Get([]byte(id.String())) != nil
		return nil
	})
	return found
}

func (s *BoltStore) SetRef(name string, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRefs).Put([]byte(name), []byte(value))
	})
}

func (s *BoltStore) GetRef(name string) (string, bool) {
	var value string
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRefs).Get([]byte(name))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	return value, found
}

func (s *BoltStore) ListRefs() (map[string]string, error) {
	out := map[string]string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRefs).ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) DeleteRef(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRefs).Delete([]byte(name))
	})
}

func (s *BoltStore) AppendAudit(rec AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAudit)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(auditKey(seq), data)
	})
}

func (s *BoltStore) ReadAudit(limit int) ([]AuditRecord, error) {
	var all []AuditRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketAudit).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec AuditRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			all = append(all, rec)
			if limit > 0 && len(all) >= limit {
				break
			}
		}
		return nil
	})
	return all, err
}

func (s *BoltStore) IterObjectIDs(fn func(ObjectID) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketObjects).ForEach(func(k, _ []byte) error {
			id, err := ParseObjectID(string(k))
			if err != nil {
				return err
			}
			return fn(id)
		})
	})
}

func (s *BoltStore) DeleteObjects(ids []ObjectID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		for _, id := range ids {
			if err := b.Delete([]byte(id.String())); err != nil {
				return err
			}
		}
		return nil
	})
}

func auditKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%020d", seq))
}

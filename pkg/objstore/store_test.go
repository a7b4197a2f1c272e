package objstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	bolt, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	return map[string]Store{
		"bolt": bolt,
		"mem":  NewMemStore(),
	}
}

func TestStorePutGetContains(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			id := Hash([]byte("payload"))
			assert.False(t, s.Contains(id))

			require.NoError(t, s.Put(id, []byte("payload")))
			assert.True(t, s.Contains(id))

			data, err := s.Get(id)
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), data)
		})
	}
}

func TestStoreGetMissingReturnsErrNotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(Hash([]byte("absent")))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreRefs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := s.GetRef("main")
			assert.False(t, ok)

			require.NoError(t, s.SetRef("main", "deadbeef"))
			v, ok := s.GetRef("main")
			require.True(t, ok)
			assert.Equal(t, "deadbeef", v)

			refs, err := s.ListRefs()
			require.NoError(t, err)
			assert.Equal(t, "deadbeef", refs["main"])

			require.NoError(t, s.DeleteRef("main"))
			_, ok = s.GetRef("main")
			assert.False(t, ok)
		})
	}
}

func TestStoreAuditAppendOnlyNewestFirst(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AppendAudit(AuditRecord{EventID: "1", Action: "commit"}))
			require.NoError(t, s.AppendAudit(AuditRecord{EventID: "2", Action: "branch"}))
			require.NoError(t, s.AppendAudit(AuditRecord{EventID: "3", Action: "merge"}))

			recs, err := s.ReadAudit(0)
			require.NoError(t, err)
			require.Len(t, recs, 3)
			assert.Equal(t, "3", recs[0].EventID)
			assert.Equal(t, "2", recs[1].EventID)
			assert.Equal(t, "1", recs[2].EventID)

			limited, err := s.ReadAudit(1)
			require.NoError(t, err)
			require.Len(t, limited, 1)
			assert.Equal(t, "3", limited[0].EventID)
		})
	}
}

func TestStoreIterAndDeleteObjects(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			idA := Hash([]byte("a"))
			idB := Hash([]byte("b"))
			require.NoError(t, s.Put(idA, []byte("a")))
			require.NoError(t, s.Put(idB, []byte("b")))

			seen := map[ObjectID]bool{}
			require.NoError(t, s.IterObjectIDs(func(id ObjectID) error {
				seen[id] = true
				return nil
			}))
			assert.True(t, seen[idA])
			assert.True(t, seen[idB])

			require.NoError(t, s.DeleteObjects([]ObjectID{idA}))
			assert.False(t, s.Contains(idA))
			assert.True(t, s.Contains(idB))
		})
	}
}

func TestOpenSelectsVariantByPath(t *testing.T) {
	mem, err := Open(":memory:")
	require.NoError(t, err)
	_, isMem := mem.(*MemStore)
	assert.True(t, isMem)

	dir := t.TempDir()
	disk, err := Open(dir)
	require.NoError(t, err)
	defer disk.Close()
	_, isBolt := disk.(*BoltStore)
	assert.True(t, isBolt)

	_, err = ParseObjectID("not-a-hash")
	assert.Error(t, err)

	assert.FileExists(t, filepath.Join(dir, ".agit", "repo.db"))
}

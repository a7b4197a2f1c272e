package repo

import "github.com/agit-dev/agit/pkg/objstore"

// Object kind tags, stored as the first byte of an object's bytes in the
// store. The id itself is always the hash of the payload that follows
// the tag, never of the tagged bytes, so Put is oblivious to kind.
const (
	tagBlob   byte = 'B'
	tagCommit byte = 'C'
)

func putObject(store objstore.Store, kind byte, payload []byte) (objstore.ObjectID, error) {
	id := objstore.Hash(payload)
	wire := make([]byte, 0, len(payload)+1)
	wire = append(wire, kind)
	wire = append(wire, payload...)
	if err := store.Put(id, wire); err != nil {
		return objstore.ObjectID{}, wrapErr(KindStorage, "write object", err)
	}
	return id, nil
}

// getObject fetches and validates one object: its stored tag, and its
// payload verified against id by recomputing the hash (I2). A mismatch
// means the object was corrupted or tampered with at rest.
func getObject(store objstore.Store, id objstore.ObjectID) (byte, []byte, error) {
	wire, err := store.Get(id)
	if err != nil {
		return 0, nil, wrapErr(KindNotFound, "object "+id.String()+" not found", err)
	}
	if len(wire) < 1 {
		return 0, nil, newErr(KindCorrupted, "object "+id.String()+" is empty")
	}
	kind, payload := wire[0], wire[1:]
	if objstore.Hash(payload) != id {
		return 0, nil, newErr(KindCorrupted, "object "+id.String()+" fails hash verification")
	}
	return kind, payload, nil
}

package objstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ObjectID is a 256-bit content hash, rendered as 64 lowercase hex
// characters on the wire.
type ObjectID [32]byte

// ZeroID is the distinguished empty object id, used where "no parent"
// needs a sentinel zero value rather than an empty slice.
var ZeroID ObjectID

func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectID) IsZero() bool {
	return id == ZeroID
}

// Hash computes the content address of data.
func Hash(data []byte) ObjectID {
	return sha256.Sum256(data)
}

// ParseObjectID decodes a full 64-character hex id.
func ParseObjectID(s string) (ObjectID, error) {
	if len(s) != 64 {
		return ObjectID{}, errors.New("objstore: object id must be 64 hex characters")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ObjectID{}, err
	}
	var id ObjectID
	copy(id[:], raw)
	return id, nil
}

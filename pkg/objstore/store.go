package objstore

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Get when an object id is not present.
var ErrNotFound = errors.New("objstore: object not found")

// AuditRecord is one append-only entry in the audit log.
type AuditRecord struct {
	EventID   string
	Timestamp time.Time
	AgentID   string
	Action    string // commit | branch | checkout | merge | revert | delete_branch | gc
	Message   string
	CommitID  string // empty when the action has no associated commit
}

// Store is the persistent key→bytes map plus ref table and audit log that
// backs a Repository. Two variants satisfy it: BoltStore (durable,
// file-backed) and MemStore (ephemeral, in-process only). Both give the
// same guarantee: a successful SetRef or AppendAudit is visible to every
// subsequent read in this process, and a Put that precedes a SetRef
// pointing at it is ordered so that any reader of the ref can Get the
// object (store-then-publish).
type Store interface {
	// Put stores data under its content hash. Idempotent: writing the
	// same bytes twice is a no-op on the second call.
	Put(id ObjectID, data []byte) error

	// Get retrieves data by id, or ErrNotFound.
	Get(id ObjectID) ([]byte, error)

	// Contains reports whether id is present without reading its bytes.
	Contains(id ObjectID) bool

	// SetRef atomically updates a named ref (branch name, or "HEAD").
	SetRef(name string, value string) error

	// GetRef resolves a ref name to its stored value.
	GetRef(name string) (string, bool)

	// ListRefs returns every ref currently set, HEAD included.
	ListRefs() (map[string]string, error)

	// DeleteRef removes a ref.
	DeleteRef(name string) error

	// AppendAudit durably appends one audit record.
	AppendAudit(rec AuditRecord) error

	// ReadAudit returns up to limit most-recent audit records, newest
	// first. limit <= 0 means "all".
	ReadAudit(limit int) ([]AuditRecord, error)

	// IterObjectIDs calls fn once per stored object id. Iteration stops
	// and returns fn's error the first time fn returns a non-nil error.
	IterObjectIDs(fn func(ObjectID) error) error

	// DeleteObjects removes the given object ids. Used only by GC, which
	// must hold exclusive access while calling it.
	DeleteObjects(ids []ObjectID) error

	// Close releases underlying resources.
	Close() error
}

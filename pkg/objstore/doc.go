/*
Package objstore implements agit's content-addressed storage layer: a
persistent key→bytes map keyed by SHA-256 hash, a small ref table (branch
name → commit hash, plus HEAD), and an append-only audit log.

# Architecture

	┌──────────────────── OBJECT STORE ──────────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐        │
	│  │              Store interface                 │        │
	│  │  Put / Get / Contains / IterObjectIDs        │        │
	│  │  GetRef / SetRef / DeleteRef / ListRefs      │        │
	│  │  AppendAudit / ReadAudit                     │        │
	│  │  DeleteObjects (GC only)                      │        │
	│  └──────────────────┬─────────────────────────┘        │
	│                     │                                    │
	│        ┌────────────┴────────────┐                      │
	│        ▼                         ▼                      │
	│  ┌───────────┐            ┌─────────────┐               │
	│  │ BoltStore │            │  MemStore   │               │
	│  │ .agit/    │            │ ":memory:"  │               │
	│  │ repo.db   │            │ no disk I/O │               │
	│  └───────────┘            └─────────────┘               │
	└──────────────────────────────────────────────────────────┘

Both variants satisfy the same contract: a successful SetRef or AppendAudit
is visible to every subsequent read in the process (and, for BoltStore only,
survives a restart, since MemStore keeps nothing on disk), and a put
followed by a ref pointing at it is ordered so observers of the ref can
always read the object.

# Value model

Values is the sum type agent state is built from (Null, Bool, Int, Float,
String, Sequence, Map). Canonical encodes a Value into bytes with sorted
map keys, which is what gets hashed to produce an ObjectID.
*/
package objstore

/*
Package repo implements agit's version-control engine over AI agent
state: content-addressed commits, branches, a movable or detached HEAD,
merges, diffs, revert, and mark-and-sweep garbage collection, all backed
by a pkg/objstore.Store.

# Architecture

	┌────────────────────────── REPOSITORY ───────────────────────────┐
	│                                                                   │
	│   Commit ──tree_hash──▶ Blob ──▶ AgentState{memory, world_state} │
	│     │                                                             │
	│     ├─ parent_hashes[]  (0 = root, 1 = linear, 2 = merge)        │
	│     └─ author / timestamp / action_type / metadata               │
	│                                                                   │
	│   refs: branch name → commit id, "HEAD" → branch name or         │
	│         commit id (detached)                                     │
	│                                                                   │
	│   objstore.Store ── Put/Get (objects) ── SetRef/GetRef (refs)    │
	│                  ── AppendAudit/ReadAudit (audit log)            │
	└───────────────────────────────────────────────────────────────────┘

A blob's two top-level fields are encrypted independently when an
encryption key is set (pkg/crypto), so commit/diff/merge operate on an
AgentState that is always plaintext in memory; only the bytes written to
the object store carry the ENC: sentinel.
*/
package repo

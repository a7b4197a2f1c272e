package repo

import "fmt"

// Revert restores the state recorded at ref as a new commit on top of
// HEAD, tagged action_type=rollback. It does not move any ref backward:
// history only ever grows forward, even when a revert undoes it (I4).
func (r *Repository) Revert(ref, author string) (*Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.stateAt(ref)
	if err != nil {
		return nil, err
	}
	resolvedID, err := r.resolveCommitish(ref)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("revert to %s", shortID(resolvedID))
	return r.commitLocked(state, message, author, ActionRollback, map[string]any{"reverted_to": resolvedID})
}

// shortID truncates a full hex object id to its first 8 characters for
// display in commit messages.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

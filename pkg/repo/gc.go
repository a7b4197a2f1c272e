package repo

import "github.com/agit-dev/agit/pkg/objstore"

// GC removes every object unreachable from a branch head or from a
// detached HEAD. keepLastN is accepted for API symmetry with callers
// that think in terms of "keep the last N commits" (the execution
// engine's auto-GC, in particular) but is advisory only: GC never
// discards a commit still reachable from any ref, regardless of age,
// since this package's Open Question on keep_last_n semantics resolves
// to "reachability is the only pruning criterion."
func (r *Repository) GC(keepLastN int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roots, err := r.gcRoots()
	if err != nil {
		return 0, err
	}

	reachable := map[string]bool{}
	for _, root := range roots {
		ancestors, err := r.ancestors(root)
		if err != nil {
			return 0, err
		}
		for id := range ancestors {
			reachable[id] = true
			c, err := r.loadCommit(id)
			if err != nil {
				return 0, err
			}
			reachable[c.TreeHash] = true
		}
	}

	var garbage []objstore.ObjectID
	err = r.store.IterObjectIDs(func(id objstore.ObjectID) error {
		if !reachable[id.String()] {
			garbage = append(garbage, id)
		}
		return nil
	})
	if err != nil {
		return 0, wrapErr(KindStorage, "scan objects for gc", err)
	}

	if len(garbage) > 0 {
		if err := r.store.DeleteObjects(garbage); err != nil {
			return 0, wrapErr(KindStorage, "delete unreachable objects", err)
		}
	}

	r.appendAudit("", "gc", "removed unreachable objects", "")
	return len(garbage), nil
}

func (r *Repository) gcRoots() ([]string, error) {
	var roots []string

	branches, err := r.listBranchNames()
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if id, ok := r.branchHead(b); ok && id != "" {
			roots = append(roots, id)
		}
	}

	head, err := r.readHead()
	if err != nil {
		return nil, err
	}
	if head.Detached && head.CommitID != "" {
		roots = append(roots, head.CommitID)
	}

	return roots, nil
}

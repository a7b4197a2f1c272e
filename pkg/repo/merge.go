package repo

import (
	"time"

	"github.com/agit-dev/agit/pkg/objstore"
)

// MergeStrategy selects how two diverged states are combined.
type MergeStrategy string

const (
	MergeOurs     MergeStrategy = "ours"
	MergeTheirs   MergeStrategy = "theirs"
	MergeThreeWay MergeStrategy = "three_way"
)

// mergeConflict records one field where both sides changed a value away
// from their common ancestor to different results. The tie-break always
// favors ours; theirs' discarded value is preserved here for visibility.
type mergeConflict struct {
	Path          string `json:"path"`
	OursValue     any    `json:"ours_value"`
	TheirsValue   any    `json:"theirs_value,omitempty"`
	TheirsRemoved bool   `json:"theirs_removed,omitempty"`
}

// Merge combines source (a branch name or commit-ish) into the branch
// currently checked out, producing a merge commit with two parents.
// HEAD must not be detached.
func (r *Repository) Merge(source string, strategy MergeStrategy, author, message string) (*Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.readHead()
	if err != nil {
		return nil, err
	}
	if head.Detached {
		return nil, newErr(KindDetachedHead, "cannot merge while HEAD is detached")
	}
	if head.CommitID == "" {
		return nil, newErr(KindInvalidInput, "current branch has no commits to merge into")
	}

	theirsID, err := r.resolveCommitish(source)
	if err != nil {
		return nil, err
	}
	oursID := head.CommitID

	if oursID == theirsID {
		// Merging a commit into itself (both sides resolve to the same
		// id): nothing changes, no new commit needed (P4).
		c, err := r.loadCommit(oursID)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}

	oursState, err := r.stateAt(oursID)
	if err != nil {
		return nil, err
	}
	theirsState, err := r.stateAt(theirsID)
	if err != nil {
		return nil, err
	}

	var resultState AgentState
	var conflicts []mergeConflict

	switch strategy {
	case MergeOurs:
		resultState = oursState
	case MergeTheirs:
		resultState = theirsState
	case MergeThreeWay:
		baseID, ok, err := r.lowestCommonAncestor(oursID, theirsID)
		if err != nil {
			return nil, err
		}
		var baseState AgentState
		if ok {
			baseState, err = r.stateAt(baseID)
			if err != nil {
				return nil, err
			}
		} else {
			baseState = AgentState{Memory: objstore.Null(), WorldState: objstore.Null()}
		}

		var memConflicts, worldConflicts []mergeConflict
		resultState.Memory, memConflicts = mergeValue("memory", baseState.Memory, oursState.Memory, theirsState.Memory)
		resultState.WorldState, worldConflicts = mergeValue("world_state", baseState.WorldState, oursState.WorldState, theirsState.WorldState)
		conflicts = append(memConflicts, worldConflicts...)
	default:
		return nil, newErr(KindInvalidInput, "unknown merge strategy "+string(strategy))
	}

	metadata := map[string]any{
		"merge_strategy": string(strategy),
		"merge_source":   source,
	}
	if len(conflicts) > 0 {
		raw := make([]any, len(conflicts))
		for i, c := range conflicts {
			raw[i] = map[string]any{
				"path":           c.Path,
				"ours_value":     c.OursValue,
				"theirs_value":   c.TheirsValue,
				"theirs_removed": c.TheirsRemoved,
			}
		}
		metadata["merge_conflicts"] = raw
	}

	if message == "" {
		message = "merge " + source
	}

	blobPayload, err := encodeBlob(resultState, r.enc)
	if err != nil {
		return nil, err
	}
	treeID, err := putObject(r.store, tagBlob, blobPayload)
	if err != nil {
		return nil, err
	}

	c := Commit{
		TreeHash:     treeID.String(),
		ParentHashes: []string{oursID, theirsID},
		Message:      message,
		Author:       author,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		ActionType:   ActionMerge,
		Metadata:     metadata,
	}
	id, err := putObject(r.store, tagCommit, encodeCommitPayload(c))
	if err != nil {
		return nil, err
	}
	c.ID = id.String()

	if err := r.advanceBranch(head.Branch, c.ID); err != nil {
		return nil, wrapErr(KindStorage, "advance branch after merge", err)
	}
	if err := r.setHeadToBranch(head.Branch); err != nil {
		return nil, wrapErr(KindStorage, "pin HEAD after merge", err)
	}
	r.appendAudit(author, "merge", message, c.ID)
	return &c, nil
}

// ancestors returns the set of commit ids reachable from start,
// start included.
func (r *Repository) ancestors(start string) (map[string]bool, error) {
	seen := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		c, err := r.loadCommit(id)
		if err != nil {
			return nil, err
		}
		queue = append(queue, c.ParentHashes...)
	}
	return seen, nil
}

// lowestCommonAncestor finds a nearest common ancestor of a and b by
// BFS-ing b's ancestry and returning the first commit also reachable
// from a. Good enough for the linear and simple-diamond histories this
// engine produces; returns ok=false when the two share no history.
func (r *Repository) lowestCommonAncestor(a, b string) (string, bool, error) {
	aAncestors, err := r.ancestors(a)
	if err != nil {
		return "", false, err
	}

	seen := map[string]bool{}
	queue := []string{b}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		if aAncestors[id] {
			return id, true, nil
		}
		c, err := r.loadCommit(id)
		if err != nil {
			return "", false, err
		}
		queue = append(queue, c.ParentHashes...)
	}
	return "", false, nil
}

func getField(v objstore.Value, key string) (objstore.Value, bool) {
	if v.Kind() != objstore.KindMap {
		return objstore.Value{}, false
	}
	return v.Get(key)
}

// mergeValue three-way merges base/ours/theirs at path, returning the
// merged value and any conflicts found in this subtree. A field changed
// identically on both sides, or changed on only one side, merges
// cleanly. A field changed differently on both sides resolves to ours,
// with theirs' value recorded as a conflict rather than silently lost.
func mergeValue(path string, base, ours, theirs objstore.Value) (objstore.Value, []mergeConflict) {
	if ours.Equal(theirs) {
		return ours, nil
	}
	if ours.Equal(base) {
		return theirs, nil
	}
	if theirs.Equal(base) {
		return ours, nil
	}

	if ours.Kind() == objstore.KindMap && theirs.Kind() == objstore.KindMap {
		baseMap, _ := base.AsMap()
		oursMap, _ := ours.AsMap()
		theirsMap, _ := theirs.AsMap()

		keys := map[string]bool{}
		for k := range baseMap {
			keys[k] = true
		}
		for k := range oursMap {
			keys[k] = true
		}
		for k := range theirsMap {
			keys[k] = true
		}

		result := map[string]objstore.Value{}
		var conflicts []mergeConflict
		for k := range keys {
			childPath := objstore.DotPath(path, k)
			bv, bOk := getField(base, k)
			ov, oOk := getField(ours, k)
			tv, tOk := getField(theirs, k)

			switch {
			case oOk && tOk:
				merged, sub := mergeValue(childPath, bv, ov, tv)
				result[k] = merged
				conflicts = append(conflicts, sub...)
			case oOk && !tOk:
				if bOk && ov.Equal(bv) {
					// ours never touched it, theirs deleted it: honor the deletion.
					continue
				}
				result[k] = ov
				if bOk {
					conflicts = append(conflicts, mergeConflict{Path: childPath, OursValue: ov.Native(), TheirsRemoved: true})
				}
			case !oOk && tOk:
				if !bOk {
					// only theirs added it: take theirs.
					result[k] = tv
					continue
				}
				if tv.Equal(bv) {
					// theirs never touched it, ours deleted it: honor the deletion.
					continue
				}
				// ours deleted it, theirs changed it: ours wins (stays deleted).
				conflicts = append(conflicts, mergeConflict{Path: childPath, OursValue: nil, TheirsValue: tv.Native()})
			default:
				// removed on both sides, or never existed: nothing to keep.
			}
		}
		return objstore.Map(result), conflicts
	}

	return ours, []mergeConflict{{Path: path, OursValue: ours.Native(), TheirsValue: theirs.Native()}}
}

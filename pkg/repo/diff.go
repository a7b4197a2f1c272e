package repo

import (
	"sort"

	"github.com/agit-dev/agit/pkg/objstore"
)

// Diff returns field-level changes from the state at fromRef to the
// state at toRef, in lexicographic dot-path order.
func (r *Repository) Diff(fromRef, toRef string) ([]DiffEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, err := r.stateAt(fromRef)
	if err != nil {
		return nil, err
	}
	to, err := r.stateAt(toRef)
	if err != nil {
		return nil, err
	}
	return diffStates(from, to), nil
}

func diffStates(a, b AgentState) []DiffEntry {
	var out []DiffEntry
	out = append(out, diffValue("memory", a.Memory, b.Memory)...)
	out = append(out, diffValue("world_state", a.WorldState, b.WorldState)...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func diffValue(path string, a, b objstore.Value) []DiffEntry {
	if a.Equal(b) {
		return nil
	}
	if a.Kind() != b.Kind() {
		return []DiffEntry{{Path: path, Kind: "changed", Old: a.Native(), New: b.Native()}}
	}

	switch a.Kind() {
	case objstore.KindMap:
		return diffMap(path, a, b)
	case objstore.KindSequence:
		return diffSequence(path, a, b)
	default:
		return []DiffEntry{{Path: path, Kind: "changed", Old: a.Native(), New: b.Native()}}
	}
}

func diffMap(path string, a, b objstore.Value) []DiffEntry {
	am, _ := a.AsMap()
	bm, _ := b.AsMap()

	keys := map[string]bool{}
	for k := range am {
		keys[k] = true
	}
	for k := range bm {
		keys[k] = true
	}

	var out []DiffEntry
	for k := range keys {
		childPath := objstore.DotPath(path, k)
		oldV, oldOk := am[k]
		newV, newOk := bm[k]
		switch {
		case !oldOk:
			out = append(out, DiffEntry{Path: childPath, Kind: "added", New: newV.Native()})
		case !newOk:
			out = append(out, DiffEntry{Path: childPath, Kind: "removed", Old: oldV.Native()})
		case !oldV.Equal(newV):
			out = append(out, diffValue(childPath, oldV, newV)...)
		}
	}
	return out
}

func diffSequence(path string, a, b objstore.Value) []DiffEntry {
	as, _ := a.AsSequence()
	bs, _ := b.AsSequence()

	var out []DiffEntry
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if !as[i].Equal(bs[i]) {
			out = append(out, diffValue(objstore.DotIndex(path, i), as[i], bs[i])...)
		}
	}
	for i := n; i < len(as); i++ {
		out = append(out, DiffEntry{Path: objstore.DotIndex(path, i), Kind: "removed", Old: as[i].Native()})
	}
	for i := n; i < len(bs); i++ {
		out = append(out, DiffEntry{Path: objstore.DotIndex(path, i), Kind: "added", New: bs[i].Native()})
	}
	return out
}

package repo

import (
	"sort"
	"strings"

	"github.com/agit-dev/agit/pkg/objstore"
)

const (
	headRefKey    = "HEAD"
	branchPrefix  = "refs/heads/"
	symbolicMark  = "ref:"
	defaultBranch = "main"
)

func branchKey(name string) string { return branchPrefix + name }

func branchNameFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, branchPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, branchPrefix), true
}

// headState describes what HEAD currently points at: either a branch
// (possibly one with no commits yet, i.e. "unborn") or a specific
// commit id directly (detached).
type headState struct {
	Detached bool
	Branch   string // valid when !Detached
	CommitID string // valid when Detached, or when the branch has a commit
}

func (r *Repository) readHead() (headState, error) {
	raw, ok := r.store.GetRef(headRefKey)
	if !ok {
		// Fresh repository: HEAD points at the unborn default branch.
		return headState{Detached: false, Branch: defaultBranch}, nil
	}
	if strings.HasPrefix(raw, symbolicMark) {
		branch := strings.TrimPrefix(raw, symbolicMark)
		commitID, _ := r.store.GetRef(branchKey(branch))
		return headState{Detached: false, Branch: branch, CommitID: commitID}, nil
	}
	return headState{Detached: true, CommitID: raw}, nil
}

func (r *Repository) setHeadToBranch(branch string) error {
	return r.store.SetRef(headRefKey, symbolicMark+branch)
}

func (r *Repository) setHeadDetached(commitID string) error {
	return r.store.SetRef(headRefKey, commitID)
}

// advanceBranch moves a branch ref to commitID, creating it if absent.
func (r *Repository) advanceBranch(branch, commitID string) error {
	return r.store.SetRef(branchKey(branch), commitID)
}

func (r *Repository) branchHead(branch string) (string, bool) {
	return r.store.GetRef(branchKey(branch))
}

func (r *Repository) branchExists(branch string) bool {
	_, ok := r.store.GetRef(branchKey(branch))
	return ok
}

// listBranchNames returns every branch in lexicographic order.
func (r *Repository) listBranchNames() ([]string, error) {
	refs, err := r.store.ListRefs()
	if err != nil {
		return nil, wrapErr(KindStorage, "list refs", err)
	}
	var names []string
	for k := range refs {
		if name, ok := branchNameFromKey(k); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// resolveCommitish resolves a branch name, "HEAD", a full 64-hex commit
// id, or an unambiguous hex prefix into a full commit id.
func (r *Repository) resolveCommitish(ref string) (string, error) {
	if ref == "" {
		return "", newErr(KindInvalidRef, "empty ref")
	}
	if ref == headRefKey {
		h, err := r.readHead()
		if err != nil {
			return "", err
		}
		if h.CommitID == "" {
			return "", newErr(KindNotFound, "HEAD has no commits yet")
		}
		return h.CommitID, nil
	}
	if commitID, ok := r.branchHead(ref); ok {
		return commitID, nil
	}
	if isHexPrefix(ref) {
		return r.resolveHexPrefix(ref)
	}
	return "", newErr(KindInvalidRef, "unknown ref "+ref)
}

func isHexPrefix(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

func (r *Repository) resolveHexPrefix(prefix string) (string, error) {
	if len(prefix) == 64 {
		if _, err := objstore.ParseObjectID(prefix); err != nil {
			return "", newErr(KindInvalidRef, "malformed commit id "+prefix)
		}
		if !r.store.Contains(mustParseID(prefix)) {
			return "", newErr(KindNotFound, "no such commit "+prefix)
		}
		return prefix, nil
	}

	var matches []string
	err := r.store.IterObjectIDs(func(id objstore.ObjectID) error {
		s := id.String()
		if strings.HasPrefix(s, prefix) {
			kind, _, err := getObject(r.store, id)
			if err == nil && kind == tagCommit {
				matches = append(matches, s)
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapErr(KindStorage, "scan objects", err)
	}
	switch len(matches) {
	case 0:
		return "", newErr(KindNotFound, "no commit matches prefix "+prefix)
	case 1:
		return matches[0], nil
	default:
		return "", newErr(KindAmbiguousRef, "prefix "+prefix+" matches multiple commits")
	}
}

func mustParseID(s string) objstore.ObjectID {
	id, _ := objstore.ParseObjectID(s)
	return id
}

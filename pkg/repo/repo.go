package repo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agit-dev/agit/pkg/crypto"
	"github.com/agit-dev/agit/pkg/log"
	"github.com/agit-dev/agit/pkg/objstore"
)

// Repository is a version-controlled store of agent state: commits,
// branches, a movable or detached HEAD, and an append-only audit log,
// all addressed through a pkg/objstore.Store.
type Repository struct {
	mu      sync.Mutex
	store   objstore.Store
	enc     *crypto.FieldEncryptor
	dataDir string
	logger  zerolog.Logger
}

// Open creates or attaches to a repository rooted at dataDir. Pass
// ":memory:" for an ephemeral, process-local repository.
func Open(dataDir string) (*Repository, error) {
	store, err := objstore.Open(dataDir)
	if err != nil {
		return nil, wrapErr(KindStorage, "open object store", err)
	}
	return &Repository{
		store:   store,
		dataDir: dataDir,
		logger:  log.WithComponent("repo"),
	}, nil
}

func (r *Repository) Close() error {
	return r.store.Close()
}

// DataDir returns the path the repository was opened with, ":memory:"
// included. Used by callers (the advisory lock, the CLI) that need to
// find .agit alongside the object store.
func (r *Repository) DataDir() string { return r.dataDir }

// SetEncryptionKey enables field-level encryption for all subsequent
// commits using a raw 32-byte AES-256 key. It never degrades to a
// weaker cipher: an invalid key is a hard error, not a silent no-op.
func (r *Repository) SetEncryptionKey(key []byte) error {
	enc, err := crypto.NewFieldEncryptor(key)
	if err != nil {
		return wrapErr(KindInvalidInput, "set encryption key", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enc = enc
	return nil
}

func (r *Repository) appendAudit(agentID, action, message, commitID string) {
	rec := objstore.AuditRecord{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		AgentID:   agentID,
		Action:    action,
		Message:   message,
		CommitID:  commitID,
	}
	if err := r.store.AppendAudit(rec); err != nil {
		r.logger.Warn().Err(err).Str("action", action).Msg("failed to append audit record")
	}
}

// AuditLog returns up to limit most-recent audit records, newest first.
// limit <= 0 returns the full log.
func (r *Repository) AuditLog(limit int) ([]objstore.AuditRecord, error) {
	recs, err := r.store.ReadAudit(limit)
	if err != nil {
		return nil, wrapErr(KindStorage, "read audit log", err)
	}
	return recs, nil
}

// Commit writes state as a new commit, advancing the current branch to
// point at it. It fails with KindDetachedHead while HEAD is detached.
func (r *Repository) Commit(state AgentState, message, author string, actionType ActionType, metadata map[string]any) (*Commit, error) {
	if len(message) > MaxMessageBytes {
		return nil, newErr(KindInvalidInput, "commit message exceeds 4096 bytes")
	}
	if !actionType.valid() {
		return nil, newErr(KindInvalidInput, "unknown action_type "+string(actionType))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commitLocked(state, message, author, actionType, metadata)
}

// commitLocked is Commit's body, factored out so Revert can append a
// commit without re-entering r.mu. Callers must hold r.mu.
func (r *Repository) commitLocked(state AgentState, message, author string, actionType ActionType, metadata map[string]any) (*Commit, error) {
	head, err := r.readHead()
	if err != nil {
		return nil, err
	}
	if head.Detached {
		return nil, newErr(KindDetachedHead, "cannot commit while HEAD is detached")
	}

	blobPayload, err := encodeBlob(state, r.enc)
	if err != nil {
		return nil, err
	}
	treeID, err := putObject(r.store, tagBlob, blobPayload)
	if err != nil {
		return nil, err
	}

	var parents []string
	if head.CommitID != "" {
		parents = []string{head.CommitID}
	}

	c := Commit{
		TreeHash:     treeID.String(),
		ParentHashes: parents,
		Message:      message,
		Author:       author,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		ActionType:   actionType,
		Metadata:     metadata,
	}
	id, err := putObject(r.store, tagCommit, encodeCommitPayload(c))
	if err != nil {
		return nil, err
	}
	c.ID = id.String()

	if err := r.advanceBranch(head.Branch, c.ID); err != nil {
		return nil, wrapErr(KindStorage, "advance branch", err)
	}
	if err := r.setHeadToBranch(head.Branch); err != nil {
		return nil, wrapErr(KindStorage, "pin HEAD to branch", err)
	}

	r.appendAudit(author, "commit", message, c.ID)
	return &c, nil
}

// loadCommit fetches and decodes the commit object for id.
func (r *Repository) loadCommit(id string) (Commit, error) {
	oid, err := objstore.ParseObjectID(id)
	if err != nil {
		return Commit{}, newErr(KindInvalidRef, "malformed commit id "+id)
	}
	kind, payload, err := getObject(r.store, oid)
	if err != nil {
		return Commit{}, err
	}
	if kind != tagCommit {
		return Commit{}, newErr(KindCorrupted, id+" is not a commit object")
	}
	c, err := decodeCommitPayload(payload)
	if err != nil {
		return Commit{}, err
	}
	c.ID = id
	return c, nil
}

func (r *Repository) loadState(treeHash string) (AgentState, error) {
	oid, err := objstore.ParseObjectID(treeHash)
	if err != nil {
		return AgentState{}, newErr(KindCorrupted, "malformed tree hash "+treeHash)
	}
	kind, payload, err := getObject(r.store, oid)
	if err != nil {
		return AgentState{}, err
	}
	if kind != tagBlob {
		return AgentState{}, newErr(KindCorrupted, treeHash+" is not a blob object")
	}
	return decodeBlob(payload, r.enc)
}

// stateAt resolves ref and loads its AgentState. Callers must hold r.mu.
func (r *Repository) stateAt(ref string) (AgentState, error) {
	commitID, err := r.resolveCommitish(ref)
	if err != nil {
		return AgentState{}, err
	}
	c, err := r.loadCommit(commitID)
	if err != nil {
		return AgentState{}, err
	}
	return r.loadState(c.TreeHash)
}

// GetState resolves ref (a branch name, "HEAD", or a commit id/prefix)
// and returns the AgentState recorded at that commit.
func (r *Repository) GetState(ref string) (AgentState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateAt(ref)
}

// Log walks ancestry starting at ref (default HEAD) and returns it
// newest first by timestamp, up to limit commits. limit <= 0 returns
// the full history.
func (r *Repository) Log(ref string, limit int) ([]Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ref == "" {
		ref = headRefKey
	}
	startID, err := r.resolveCommitish(ref)
	if err != nil {
		return nil, err
	}

	var out []Commit
	seen := map[string]bool{}
	queue := []string{startID}
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
		out = append(out, c)
		queue = append(queue, c.ParentHashes...)
	}
	// RFC3339 UTC timestamps order lexically; the stable sort keeps the
	// walk's order among commits made within the same second.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Branch creates a new branch named name pointing at startPoint
// (default: the commit HEAD currently resolves to).
func (r *Repository) Branch(name, startPoint string) error {
	if !ValidBranchName(name) {
		return newErr(KindInvalidInput, "invalid branch name "+name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.branchExists(name) {
		return newErr(KindAlreadyExists, "branch "+name+" already exists")
	}

	if startPoint == "" {
		startPoint = headRefKey
	}
	commitID, err := r.resolveCommitish(startPoint)
	if err != nil {
		return err
	}
	if err := r.advanceBranch(name, commitID); err != nil {
		return wrapErr(KindStorage, "create branch", err)
	}
	r.appendAudit("", "branch", "create "+name, commitID)
	return nil
}

// Checkout moves HEAD to name: symbolically if name is a branch, or
// detached if name resolves to a commit id/prefix instead.
func (r *Repository) Checkout(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.branchExists(name) {
		if err := r.setHeadToBranch(name); err != nil {
			return wrapErr(KindStorage, "checkout branch", err)
		}
		r.appendAudit("", "checkout", "checkout "+name, "")
		return nil
	}

	commitID, err := r.resolveCommitish(name)
	if err != nil {
		return err
	}
	if err := r.setHeadDetached(commitID); err != nil {
		return wrapErr(KindStorage, "checkout commit", err)
	}
	r.appendAudit("", "checkout", "checkout "+name, commitID)
	return nil
}

// ListBranches returns every branch name in lexicographic order.
func (r *Repository) ListBranches() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listBranchNames()
}

// CurrentBranch returns the branch HEAD points at, or ("", true) when
// HEAD is detached onto a bare commit id.
func (r *Repository) CurrentBranch() (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, err := r.readHead()
	if err != nil {
		return "", false, err
	}
	return h.Branch, h.Detached, nil
}

// DeleteBranch removes a branch. Deleting the branch HEAD currently
// points at (symbolically) is rejected: checkout elsewhere first.
func (r *Repository) DeleteBranch(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.branchExists(name) {
		return newErr(KindNotFound, "branch "+name+" does not exist")
	}
	h, err := r.readHead()
	if err != nil {
		return err
	}
	if !h.Detached && h.Branch == name {
		return newErr(KindInvalidInput, "cannot delete the checked-out branch "+name)
	}
	if err := r.store.DeleteRef(branchKey(name)); err != nil {
		return wrapErr(KindStorage, "delete branch", err)
	}
	r.appendAudit("", "delete_branch", "delete "+name, "")
	return nil
}

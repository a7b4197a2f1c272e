package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agit-dev/agit/pkg/objstore"
)

func openTestRepo(t *testing.T) *Repository {
	r, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func state(step int64, name string) AgentState {
	return AgentState{
		Memory: objstore.Map(map[string]objstore.Value{
			"step": objstore.Int(step),
		}),
		WorldState: objstore.Map(map[string]objstore.Value{
			"agent_name": objstore.String(name),
		}),
	}
}

func TestCommitAdvancesDefaultBranch(t *testing.T) {
	r := openTestRepo(t)
	c, err := r.Commit(state(1, "a1"), "first", "tester", ActionCheckpoint, nil)
	require.NoError(t, err)
	assert.Empty(t, c.ParentHashes)

	branch, detached, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.False(t, detached)
	assert.Equal(t, "main", branch)

	got, err := r.GetState("HEAD")
	require.NoError(t, err)
	step, _ := got.Memory.Get("step")
	v, _ := step.AsInt()
	assert.Equal(t, int64(1), v)
}

func TestCommitChainsParents(t *testing.T) {
	r := openTestRepo(t)
	c1, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	c2, err := r.Commit(state(2, "a"), "c2", "t", ActionToolCall, nil)
	require.NoError(t, err)
	require.Equal(t, []string{c1.ID}, c2.ParentHashes)
}

func TestCommitRejectsOversizeMessage(t *testing.T) {
	r := openTestRepo(t)
	big := make([]byte, MaxMessageBytes+1)
	_, err := r.Commit(state(1, "a"), string(big), "t", ActionCheckpoint, nil)
	require.Error(t, err)
	assert.True(t, Is(err, KindInvalidInput))
}

func TestCommitRejectsUnknownActionType(t *testing.T) {
	r := openTestRepo(t)
	_, err := r.Commit(state(1, "a"), "m", "t", ActionType("bogus"), nil)
	require.Error(t, err)
	assert.True(t, Is(err, KindInvalidInput))
}

func TestBranchAndCheckout(t *testing.T) {
	r := openTestRepo(t)
	c1, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)

	require.NoError(t, r.Branch("feature", ""))
	require.NoError(t, r.Checkout("feature"))

	branch, detached, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.False(t, detached)
	assert.Equal(t, "feature", branch)

	c2, err := r.Commit(state(2, "a"), "c2", "t", ActionToolCall, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{c1.ID}, c2.ParentHashes)

	require.NoError(t, r.Checkout("main"))
	mainState, err := r.GetState("HEAD")
	require.NoError(t, err)
	step, _ := mainState.Memory.Get("step")
	v, _ := step.AsInt()
	assert.Equal(t, int64(1), v, "main must not see feature's commit")
}

func TestCheckoutDetachedByCommitID(t *testing.T) {
	r := openTestRepo(t)
	c1, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	_, err = r.Commit(state(2, "a"), "c2", "t", ActionToolCall, nil)
	require.NoError(t, err)

	require.NoError(t, r.Checkout(c1.ID))
	branch, detached, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.True(t, detached)
	assert.Empty(t, branch)
}

func TestCommitRefusesWhenHeadDetached(t *testing.T) {
	r := openTestRepo(t)
	c1, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)

	require.NoError(t, r.Checkout(c1.ID))

	_, err = r.Commit(state(2, "a"), "c2", "t", ActionToolCall, nil)
	require.Error(t, err)
	assert.True(t, Is(err, KindDetachedHead))

	_, detached, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.True(t, detached, "a refused commit must not move HEAD off the detached commit")
}

func TestBranchDuplicateNameFails(t *testing.T) {
	r := openTestRepo(t)
	_, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	require.NoError(t, r.Branch("feature", ""))
	err = r.Branch("feature", "")
	require.Error(t, err)
	assert.True(t, Is(err, KindAlreadyExists))
}

func TestInvalidBranchNameRejected(t *testing.T) {
	r := openTestRepo(t)
	_, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	err = r.Branch("-bad", "")
	require.Error(t, err)
	assert.True(t, Is(err, KindInvalidInput))
}

func TestDeleteBranchRejectsCurrent(t *testing.T) {
	r := openTestRepo(t)
	_, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	err = r.DeleteBranch("main")
	require.Error(t, err)
	assert.True(t, Is(err, KindInvalidInput))
}

func TestLogOrdersNewestFirst(t *testing.T) {
	r := openTestRepo(t)
	_, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	c2, err := r.Commit(state(2, "a"), "c2", "t", ActionToolCall, nil)
	require.NoError(t, err)

	entries, err := r.Log("HEAD", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, c2.ID, entries[0].ID)
}

func TestDiffDetectsAddedRemovedChanged(t *testing.T) {
	r := openTestRepo(t)
	a := AgentState{
		Memory: objstore.Map(map[string]objstore.Value{
			"step": objstore.Int(1),
			"old":  objstore.String("gone"),
		}),
		WorldState: objstore.Null(),
	}
	b := AgentState{
		Memory: objstore.Map(map[string]objstore.Value{
			"step": objstore.Int(2),
			"new":  objstore.Bool(true),
		}),
		WorldState: objstore.Null(),
	}
	_, err := r.Commit(a, "a", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	_, err = r.Commit(b, "b", "t", ActionCheckpoint, nil)
	require.NoError(t, err)

	entries, err := r.Diff("HEAD~wontresolve", "HEAD")
	assert.Nil(t, entries)
	assert.Error(t, err)

	branches, err := r.ListBranches()
	require.NoError(t, err)
	require.Contains(t, branches, "main")

	history, err := r.Log("HEAD", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	diffEntries, err := r.Diff(history[1].ID, history[0].ID)
	require.NoError(t, err)

	byPath := map[string]DiffEntry{}
	for _, e := range diffEntries {
		byPath[e.Path] = e
	}
	assert.Equal(t, "changed", byPath["memory.step"].Kind)
	assert.Equal(t, "removed", byPath["memory.old"].Kind)
	assert.Equal(t, "added", byPath["memory.new"].Kind)
}

func TestRevertRestoresStateWithCorrectParent(t *testing.T) {
	r := openTestRepo(t)
	c1, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	c2, err := r.Commit(state(2, "a"), "c2", "t", ActionToolCall, nil)
	require.NoError(t, err)

	c3, err := r.Revert(c1.ID, "t")
	require.NoError(t, err)
	assert.Equal(t, []string{c2.ID}, c3.ParentHashes)
	assert.Equal(t, ActionRollback, c3.ActionType)
	assert.Equal(t, "revert to "+c1.ID[:8], c3.Message)

	got, err := r.GetState("HEAD")
	require.NoError(t, err)
	step, _ := got.Memory.Get("step")
	v, _ := step.AsInt()
	assert.Equal(t, int64(1), v)
}

func TestMergeOursTheirsThreeWay(t *testing.T) {
	r := openTestRepo(t)
	base, err := r.Commit(state(0, "base"), "base", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	require.NoError(t, r.Branch("feature", base.ID))

	_, err = r.Commit(state(1, "main-changed"), "main change", "t", ActionToolCall, nil)
	require.NoError(t, err)

	require.NoError(t, r.Checkout("feature"))
	_, err = r.Commit(state(2, "base"), "feature change", "t", ActionToolCall, nil)
	require.NoError(t, err)

	require.NoError(t, r.Checkout("main"))
	merged, err := r.Merge("feature", MergeThreeWay, "t", "")
	require.NoError(t, err)
	require.Len(t, merged.ParentHashes, 2)

	got, err := r.GetState("HEAD")
	require.NoError(t, err)
	step, _ := got.Memory.Get("step")
	v, _ := step.AsInt()
	assert.Equal(t, int64(1), v, "main's own change should win the memory.step conflict")

	name, _ := got.WorldState.Get("agent_name")
	n, _ := name.AsString()
	assert.Equal(t, "main-changed", n)

	conflicts, ok := merged.Metadata["merge_conflicts"]
	require.True(t, ok)
	assert.NotEmpty(t, conflicts)
}

func TestMergeIntoSelfIsNoOp(t *testing.T) {
	r := openTestRepo(t)
	c1, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	merged, err := r.Merge("HEAD", MergeThreeWay, "t", "")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, merged.ID)
}

func TestGCRemovesUnreachableKeepsReachable(t *testing.T) {
	r := openTestRepo(t)
	c1, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	require.NoError(t, r.Branch("doomed", c1.ID))
	require.NoError(t, r.Checkout("doomed"))
	orphan, err := r.Commit(state(2, "a"), "orphan", "t", ActionToolCall, nil)
	require.NoError(t, err)
	require.NoError(t, r.Checkout("main"))
	require.NoError(t, r.DeleteBranch("doomed"))

	removed, err := r.GC(0)
	require.NoError(t, err)
	assert.Greater(t, removed, 0)

	_, err = r.loadCommit(orphan.ID)
	assert.True(t, Is(err, KindNotFound) || Is(err, KindStorage))

	_, err = r.loadCommit(c1.ID)
	assert.NoError(t, err)
}

func TestSetEncryptionKeyRoundTripsTransparently(t *testing.T) {
	r := openTestRepo(t)
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	require.NoError(t, r.SetEncryptionKey(key))

	_, err := r.Commit(state(1, "secret-agent"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)

	got, err := r.GetState("HEAD")
	require.NoError(t, err)
	name, _ := got.WorldState.Get("agent_name")
	n, _ := name.AsString()
	assert.Equal(t, "secret-agent", n)
}

func TestSetEncryptionKeyRejectsBadLength(t *testing.T) {
	r := openTestRepo(t)
	err := r.SetEncryptionKey([]byte("short"))
	require.Error(t, err)
	assert.True(t, Is(err, KindInvalidInput))
}

func TestAuditLogRecordsCommitsAndBranches(t *testing.T) {
	r := openTestRepo(t)
	_, err := r.Commit(state(1, "a"), "c1", "t", ActionCheckpoint, nil)
	require.NoError(t, err)
	require.NoError(t, r.Branch("feature", ""))

	recs, err := r.AuditLog(0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "branch", recs[0].Action)
	assert.Equal(t, "commit", recs[1].Action)
}

func TestValidBranchNameRules(t *testing.T) {
	assert.True(t, ValidBranchName("main"))
	assert.True(t, ValidBranchName("retry/run-1/attempt-0"))
	assert.False(t, ValidBranchName(""))
	assert.False(t, ValidBranchName("-leading-hyphen"))
	assert.False(t, ValidBranchName(".leading-dot"))
}

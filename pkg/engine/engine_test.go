package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
)

func newTestEngine(t *testing.T) *Engine {
	r, err := repo.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return New(r, 0)
}

func baseState() repo.AgentState {
	return repo.AgentState{
		Memory:     objstore.Map(map[string]objstore.Value{"step": objstore.Int(0)}),
		WorldState: objstore.Null(),
	}
}

func TestExecuteSuccessTagsLastResultAndCommitsTwice(t *testing.T) {
	e := newTestEngine(t)
	commit, newState, err := e.Execute(baseState(), "run tool", "agent-1", repo.ActionToolCall, func(s repo.AgentState) (objstore.Value, error) {
		return objstore.String("tool-output"), nil
	})
	require.NoError(t, err)
	require.NotNil(t, commit)

	lastResult, ok := newState.Memory.Get("last_result")
	require.True(t, ok)
	s, _ := lastResult.AsString()
	assert.Equal(t, "tool-output", s)

	history, err := e.GetHistory(0)
	require.NoError(t, err)
	assert.Len(t, history, 2, "pre-commit checkpoint plus post-commit")
	assert.Equal(t, repo.ActionToolCall, history[0].ActionType)
	assert.Equal(t, repo.ActionCheckpoint, history[1].ActionType)
}

func TestExecuteActionReturningStateShapeReplacesStateOutright(t *testing.T) {
	e := newTestEngine(t)
	commit, newState, err := e.Execute(baseState(), "update step", "agent-1", repo.ActionToolCall, func(s repo.AgentState) (objstore.Value, error) {
		mem, _ := s.Memory.AsMap()
		newMem := map[string]objstore.Value{}
		for k, v := range mem {
			newMem[k] = v
		}
		newMem["step"] = objstore.Int(99)
		return objstore.Map(map[string]objstore.Value{
			"memory": objstore.Map(newMem),
		}), nil
	})
	require.NoError(t, err)
	require.NotNil(t, commit)

	step, ok := newState.Memory.Get("step")
	require.True(t, ok)
	v, _ := step.AsInt()
	assert.Equal(t, int64(99), v)

	_, hasLastResult := newState.Memory.Get("last_result")
	assert.False(t, hasLastResult, "a {memory, world_state}-shaped result replaces state, it is not tagged as last_result")

	assert.True(t, newState.WorldState.Equal(baseState().WorldState), "world_state is untouched when the result omits it")
}

func TestExecuteErrorRecordsRollbackAndPropagatesError(t *testing.T) {
	e := newTestEngine(t)
	wantErr := errors.New("boom")
	_, _, err := e.Execute(baseState(), "risky op", "agent-1", repo.ActionToolCall, func(s repo.AgentState) (objstore.Value, error) {
		return objstore.Value{}, wantErr
	})
	require.ErrorIs(t, err, wantErr)

	history, err := e.GetHistory(0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, repo.ActionRollback, history[0].ActionType)
}

func TestGetCurrentStateUsesCacheThenHead(t *testing.T) {
	e := newTestEngine(t)
	_, newState, err := e.Execute(baseState(), "op", "a", repo.ActionToolCall, func(s repo.AgentState) (objstore.Value, error) {
		return objstore.Bool(true), nil
	})
	require.NoError(t, err)

	cur, err := e.GetCurrentState()
	require.NoError(t, err)
	assert.True(t, cur.Memory.Equal(newState.Memory))
}

func TestCheckoutInvalidatesCache(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.Execute(baseState(), "op", "a", repo.ActionToolCall, func(s repo.AgentState) (objstore.Value, error) {
		return objstore.Bool(true), nil
	})
	require.NoError(t, err)

	require.NoError(t, e.Branch("feature", ""))
	require.NoError(t, e.Checkout("feature"))

	cur, err := e.GetCurrentState()
	require.NoError(t, err)
	_, ok := cur.Memory.Get("last_result")
	assert.True(t, ok, "feature branch shares history up to the branch point")
}

func TestAutoGCFiresEveryNthCommit(t *testing.T) {
	r, err := repo.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	e := New(r, 1)

	_, _, err = e.Execute(baseState(), "op", "a", repo.ActionToolCall, func(s repo.AgentState) (objstore.Value, error) {
		return objstore.Bool(true), nil
	})
	require.NoError(t, err)

	recs, err := e.AuditLog(0)
	require.NoError(t, err)
	found := false
	for _, rec := range recs {
		if rec.Action == "gc" {
			found = true
		}
	}
	assert.True(t, found, "gcEvery=1 should trigger a gc audit record after one commit")
}

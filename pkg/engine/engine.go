package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agit-dev/agit/pkg/log"
	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
)

// ActionFunc is one unit of work the engine wraps in commits. It
// receives the state at invocation time and returns a result value,
// interpreted by ApplyResult: a map carrying a "memory" and/or
// "world_state" key replaces that half of the state outright, and
// anything else is tagged into memory.last_result instead.
type ActionFunc func(repo.AgentState) (objstore.Value, error)

// Engine wraps a Repository with pre/post/error-path commits around
// arbitrary actions, and caches the last committed state so repeated
// reads don't have to resolve HEAD through the store each time.
type Engine struct {
	mu      sync.Mutex
	repo    *repo.Repository
	gcEvery int // 0 disables auto-GC
	since   int
	last    *repo.AgentState
	logger  zerolog.Logger
}

// New wraps repository r. gcEvery > 0 triggers a GC pass after every
// gcEvery'th successful commit made through Execute.
func New(r *repo.Repository, gcEvery int) *Engine {
	return &Engine{repo: r, gcEvery: gcEvery, logger: log.WithComponent("engine")}
}

// Execute runs action against state: a "pre: <message>" checkpoint is
// committed first, then action runs. On error, a rollback commit
// records the failure and the original error is returned unchanged. On
// success, ApplyResult folds the result into state and the outcome is
// committed as message under actionType.
func (e *Engine) Execute(state repo.AgentState, message, author string, actionType repo.ActionType, action ActionFunc) (*repo.Commit, repo.AgentState, error) {
	if _, err := e.repo.Commit(state, "pre: "+message, author, repo.ActionCheckpoint, nil); err != nil {
		return nil, state, err
	}

	start := time.Now()
	result, err := action(state)
	if err != nil {
		rollbackMsg := fmt.Sprintf("error: %s – %v", message, err)
		if _, cerr := e.repo.Commit(state, rollbackMsg, author, repo.ActionRollback, map[string]any{"error": err.Error()}); cerr != nil {
			e.logger.Warn().Err(cerr).Msg("failed to record rollback commit")
		}
		return nil, state, err
	}
	elapsed := time.Since(start)

	newState := ApplyResult(state, result)
	postMessage := fmt.Sprintf("%s (elapsed=%.3fs)", message, elapsed.Seconds())
	commit, err := e.repo.Commit(newState, postMessage, author, actionType, nil)
	if err != nil {
		return nil, state, err
	}

	e.mu.Lock()
	e.last = &newState
	e.since++
	shouldGC := e.gcEvery > 0 && e.since >= e.gcEvery
	if shouldGC {
		e.since = 0
	}
	e.mu.Unlock()

	if shouldGC {
		if _, gerr := e.repo.GC(0); gerr != nil {
			e.logger.Warn().Err(gerr).Msg("auto-gc failed")
		}
	}

	return commit, newState, nil
}

// ApplyResult folds an action's return value into state. A result
// shaped as a map carrying a "memory" and/or "world_state" key is a
// full-state replacement: that key's value becomes the new memory or
// world_state directly, leaving the other half untouched if the map
// didn't mention it. Any other result (a scalar, a sequence, or a map
// without either key) is tagged into memory.last_result instead,
// leaving world_state and every other memory field untouched. This
// gives an action the choice between handing back a well-formed state
// and a bare result, the same dual behavior agit's Python reference
// executor implements in its own `_dict_to_state`.
func ApplyResult(state repo.AgentState, result objstore.Value) repo.AgentState {
	if m, ok := result.AsMap(); ok {
		memory, hasMemory := m["memory"]
		worldState, hasWorldState := m["world_state"]
		if hasMemory || hasWorldState {
			newState := state
			if hasMemory {
				newState.Memory = memory
			}
			if hasWorldState {
				newState.WorldState = worldState
			}
			return newState
		}
	}
	return tagLastResult(state, result)
}

// tagLastResult returns a copy of state with memory.last_result set to
// result, leaving world_state and every other memory field untouched.
func tagLastResult(state repo.AgentState, result objstore.Value) repo.AgentState {
	fields := map[string]objstore.Value{}
	if m, ok := state.Memory.AsMap(); ok {
		for k, v := range m {
			fields[k] = v
		}
	}
	fields["last_result"] = result
	return repo.AgentState{Memory: objstore.Map(fields), WorldState: state.WorldState}
}

// CommitState commits state directly, bypassing the pre/post checkpoint
// wrapping Execute does. Used by callers (retry, swarm) that already
// manage their own commit shape.
func (e *Engine) CommitState(state repo.AgentState, message, author string, actionType repo.ActionType, metadata map[string]any) (*repo.Commit, error) {
	c, err := e.repo.Commit(state, message, author, actionType, metadata)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.last = &state
	e.mu.Unlock()
	return c, nil
}

// GetCurrentState returns the last state committed through this engine,
// if any has been cached, falling back to resolving HEAD otherwise.
func (e *Engine) GetCurrentState() (repo.AgentState, error) {
	e.mu.Lock()
	cached := e.last
	e.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}
	return e.repo.GetState("HEAD")
}

func (e *Engine) GetHistory(limit int) ([]repo.Commit, error) { return e.repo.Log("HEAD", limit) }

func (e *Engine) Branch(name, startPoint string) error { return e.repo.Branch(name, startPoint) }

func (e *Engine) Checkout(name string) error {
	e.mu.Lock()
	e.last = nil
	e.mu.Unlock()
	return e.repo.Checkout(name)
}

func (e *Engine) Merge(source string, strategy repo.MergeStrategy, author, message string) (*repo.Commit, error) {
	c, err := e.repo.Merge(source, strategy, author, message)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.last = nil
	e.mu.Unlock()
	return c, nil
}

func (e *Engine) Revert(ref, author string) (*repo.Commit, error) {
	c, err := e.repo.Revert(ref, author)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.last = nil
	e.mu.Unlock()
	return c, nil
}

func (e *Engine) Diff(fromRef, toRef string) ([]repo.DiffEntry, error) { return e.repo.Diff(fromRef, toRef) }

func (e *Engine) ListBranches() ([]string, error) { return e.repo.ListBranches() }

func (e *Engine) CurrentBranch() (string, bool, error) { return e.repo.CurrentBranch() }

func (e *Engine) AuditLog(limit int) ([]objstore.AuditRecord, error) { return e.repo.AuditLog(limit) }

func (e *Engine) GC(keepLastN int) (int, error) { return e.repo.GC(keepLastN) }

// Repository exposes the underlying repository for callers (the retry
// engine, the swarm orchestrator) that need operations Engine doesn't
// wrap directly.
func (e *Engine) Repository() *repo.Repository { return e.repo }

package swarm

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agit-dev/agit/pkg/engine"
	"github.com/agit-dev/agit/pkg/lock"
	"github.com/agit-dev/agit/pkg/log"
	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
)

// Orchestrator runs a swarm of sub-tasks against one engine, serializing
// every commit behind the repository's advisory lock so concurrently
// executing workers never race on the shared history.
type Orchestrator struct {
	exec        *engine.Engine
	lockPath    string
	lockTimeout time.Duration
	logger      zerolog.Logger
}

func New(e *engine.Engine, lockTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		exec:        e,
		lockPath:    lock.SwarmLockPath(e.Repository().DataDir()),
		lockTimeout: lockTimeout,
		logger:      log.WithComponent("swarm"),
	}
}

// Run executes tasks to completion against state: each ready batch
// (every dependency satisfied) runs concurrently, one goroutine per
// task, with each task's result committed under the advisory lock as
// soon as it finishes. Returns the final synthesized state.
func (o *Orchestrator) Run(ctx context.Context, tasks []*SubTask, workers []Worker, state repo.AgentState, author string) (repo.AgentState, error) {
	if err := AssignWorkers(tasks, workers); err != nil {
		return state, err
	}
	if err := ValidateDAG(tasks); err != nil {
		return state, err
	}

	current := state
	completed := map[string]bool{}

	for len(completed) < len(tasks) {
		ready := o.readySet(tasks, completed)
		if len(ready) == 0 {
			var remaining []string
			for _, t := range tasks {
				if !completed[t.ID] {
					remaining = append(remaining, t.ID)
				}
			}
			return current, &DeadlockedError{Remaining: remaining}
		}

		// A failed task is never marked completed, so its dependents
		// never enter a later ready set; the loop detects that as a
		// stall above rather than cascade-failing them here.
		results, err := o.runBatch(ctx, ready, workers, current, author)
		if err != nil {
			o.logger.Warn().Err(err).Msg("sub-task batch had failures, remaining tasks may deadlock")
		}
		for id := range results {
			completed[id] = true
		}
		// The batch's last successfully committed state becomes the
		// input to the next batch; sub-tasks within a batch are
		// independent of each other by construction (no task depends
		// on a peer from its own batch), so any deterministic pick of
		// "latest state among this batch" is a faithful fold.
		for _, t := range ready {
			if s, ok := results[t.ID]; ok {
				current = s
			}
		}
	}

	return current, nil
}

func (o *Orchestrator) readySet(tasks []*SubTask, completed map[string]bool) []*SubTask {
	var ready []*SubTask
	for _, t := range tasks {
		if completed[t.ID] || t.Status == StatusFailed {
			continue
		}
		allDepsDone := true
		for _, dep := range t.Dependencies {
			if !completed[dep] {
				allDepsDone = false
				break
			}
		}
		if allDepsDone {
			ready = append(ready, t)
		}
	}
	return ready
}

func (o *Orchestrator) runBatch(ctx context.Context, batch []*SubTask, workers []Worker, state repo.AgentState, author string) (map[string]repo.AgentState, error) {
	workerByID := make(map[string]Worker, len(workers))
	for _, w := range workers {
		workerByID[w.ID()] = w
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]repo.AgentState, len(batch))
	var firstErr error

	for _, t := range batch {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.Status = StatusRunning

			w, ok := workerByID[t.AssignedWorker]
			if !ok {
				mu.Lock()
				t.Status = StatusFailed
				t.Err = ErrNoWorkers
				if firstErr == nil {
					firstErr = ErrNoWorkers
				}
				mu.Unlock()
				return
			}

			result, workerErr := w.Run(ctx, t, state)
			newState, commitErr := o.commitResult(t, state, result, workerErr, author)

			mu.Lock()
			defer mu.Unlock()
			if workerErr != nil {
				t.Status = StatusFailed
				t.Err = workerErr
				if firstErr == nil {
					firstErr = workerErr
				}
				return
			}
			if commitErr != nil {
				t.Status = StatusFailed
				t.Err = commitErr
				if firstErr == nil {
					firstErr = commitErr
				}
				return
			}
			t.Status = StatusCompleted
			t.Result = result
			results[t.ID] = newState
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}

// commitResult takes the advisory lock and commits one sub-task's
// outcome: a checkpoint for plan/synthesize tasks, a tool_call for
// execute tasks, an error rollback if the worker itself failed. Its
// returned error reflects only commit/lock failures; the worker's own
// error is the caller's concern, tracked separately.
func (o *Orchestrator) commitResult(t *SubTask, state repo.AgentState, result objstore.Value, workerErr error, author string) (repo.AgentState, error) {
	newState := state

	lockErr := lock.WithLock(o.lockPath, o.lockTimeout, func() error {
		if workerErr != nil {
			_, err := o.exec.Repository().Commit(state, "sub-task "+t.ID+" failed: "+workerErr.Error(), author, repo.ActionRollback, map[string]any{"sub_task": t.ID, "error": workerErr.Error()})
			return err
		}

		newState = engine.ApplyResult(state, result)

		actionType := repo.ActionToolCall
		if t.Role == RolePlan || t.Role == RoleSynthesize {
			actionType = repo.ActionCheckpoint
		}
		_, err := o.exec.Repository().Commit(newState, t.Description, author, actionType, map[string]any{"sub_task": t.ID, "worker": t.AssignedWorker})
		return err
	})
	return newState, lockErr
}

package swarm

import (
	"context"
	"errors"
	"fmt"

	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
)

// Status is a sub-task's execution state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Role distinguishes the three tiers Decompose produces. Plan and
// Synthesize commit as checkpoints; Execute sub-tasks commit as
// tool_call, matching what a worker actually did.
type Role string

const (
	RolePlan       Role = "plan"
	RoleExecute    Role = "execute"
	RoleSynthesize Role = "synthesize"
)

// SubTask is one node in the swarm's DAG.
type SubTask struct {
	ID             string
	Description    string
	Dependencies   []string
	Role           Role
	AssignedWorker string
	Status         Status
	Result         objstore.Value
	Err            error
}

// Worker runs one sub-task against the current state and returns a raw
// result value, the same contract engine.ActionFunc uses.
type Worker interface {
	ID() string
	Run(ctx context.Context, task *SubTask, state repo.AgentState) (objstore.Value, error)
}

var (
	// ErrNoWorkers is returned when AssignWorkers is given zero workers.
	ErrNoWorkers = errors.New("swarm: no workers available")
	// ErrCycleDetected is returned when the sub-task dependency graph
	// contains a cycle and has no valid topological order.
	ErrCycleDetected = errors.New("swarm: dependency cycle detected")
)

// DeadlockedError is returned when execution stalls: tasks remain
// incomplete but none are ready. Remaining lists every incomplete task:
// the ones that failed and every task that depends (directly or
// transitively) on one of them.
type DeadlockedError struct {
	Remaining []string
}

func (e *DeadlockedError) Error() string {
	return fmt.Sprintf("swarm: deadlocked with %d sub-tasks unable to proceed: %v", len(e.Remaining), e.Remaining)
}

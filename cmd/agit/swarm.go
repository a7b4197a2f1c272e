package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
	"github.com/agit-dev/agit/pkg/swarm"
)

// echoWorker is the CLI's built-in demo worker: it does no real work,
// just records that it touched its assigned sub-task. A real deployment
// wires swarm.Worker to whatever executes an agent's tool calls.
type echoWorker struct{ id string }

func (w echoWorker) ID() string { return w.id }

func (w echoWorker) Run(ctx context.Context, task *swarm.SubTask, state repo.AgentState) (objstore.Value, error) {
	return objstore.String(fmt.Sprintf("%s handled %s", w.id, task.Description)), nil
}

var swarmCmd = &cobra.Command{
	Use:   "swarm",
	Short: "Orchestrate a goal across a DAG of sub-tasks",
}

var swarmRunCmd = &cobra.Command{
	Use:   "run GOAL",
	Short: "Decompose GOAL into plan/execute*/synthesize sub-tasks and run them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		numExecute, _ := cmd.Flags().GetInt("execute-tasks")
		numWorkers, _ := cmd.Flags().GetInt("workers")
		lockTimeout, _ := cmd.Flags().GetDuration("lock-timeout")

		e, r, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		state, err := e.GetCurrentState()
		if err != nil {
			return fmt.Errorf("load current state: %w", err)
		}

		tasks := swarm.Decompose(args[0], numExecute)
		workers := make([]swarm.Worker, numWorkers)
		for i := range workers {
			workers[i] = echoWorker{id: fmt.Sprintf("worker-%d", i+1)}
		}

		o := swarm.New(e, lockTimeout)
		ctx := context.Background()
		final, err := o.Run(ctx, tasks, workers, state, authorFlag(cmd))

		for _, t := range tasks {
			fmt.Printf("%-12s role=%-10s worker=%-10s status=%s\n", t.ID, t.Role, t.AssignedWorker, t.Status)
		}
		if err != nil {
			return fmt.Errorf("swarm run: %w", err)
		}

		fmt.Println()
		return printJSON(stateToNative(final))
	},
}

func init() {
	swarmRunCmd.Flags().Int("execute-tasks", 3, "Number of parallel execute sub-tasks between plan and synthesize")
	swarmRunCmd.Flags().Int("workers", 3, "Number of workers to round-robin sub-tasks across")
	swarmRunCmd.Flags().Duration("lock-timeout", 5*time.Second, "Timeout acquiring the swarm's advisory commit lock")
	swarmCmd.AddCommand(swarmRunCmd)
}

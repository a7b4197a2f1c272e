/*
Package swarm decomposes one goal into a DAG of sub-tasks, schedules
them with Kahn's algorithm, assigns them to workers round-robin, and
executes each ready batch concurrently, committing every sub-task
result under an advisory lock (pkg/lock) so concurrent workers never
race on the shared repository.

	plan (no deps)
	  ├─▶ execute-1 ─┐
	  ├─▶ execute-2 ─┼─▶ synthesize (depends on every execute-*)
	  └─▶ execute-N ─┘

Decompose builds this shape; Orchestrator.Run walks it to completion or
reports ErrCycleDetected, a *DeadlockedError, or ErrNoWorkers.
*/
package swarm

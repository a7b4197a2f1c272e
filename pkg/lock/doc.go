// Package lock provides the cross-process advisory lock the swarm
// orchestrator uses to serialize sub-task commits against a shared
// repository: a syscall.Flock'd file at .agit/swarm.lock, acquired with
// a blocking-with-timeout call and released on every exit path.
package lock

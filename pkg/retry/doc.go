// Package retry runs an action with branch-per-attempt isolation:
// attempt 0 runs on base_branch itself, and each later attempt executes
// on its own branch, so a failed retry's partial commits never touch
// base_branch, and a successful retry merges its branch back with the
// "theirs" strategy.
package retry

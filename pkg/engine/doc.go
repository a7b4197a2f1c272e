// Package engine wraps a repo.Repository with the commit-around-action
// pattern: every invoked action gets a pre-commit checkpoint, a
// post-commit on success, and a rollback commit on error, so an agent's
// history always shows what was attempted even when it failed.
package engine

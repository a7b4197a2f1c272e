package retry

import (
	"fmt"

	"github.com/agit-dev/agit/pkg/repo"
)

// Attempt records the outcome of one try within a retry run.
type Attempt struct {
	Attempt int
	Branch  string
	Success bool
	Commit  *repo.Commit
	Err     error
}

// History is the full record of a retry run: every attempt, in order,
// plus the branch the run started and (on success) merged back into.
type History struct {
	RunID      string
	BaseBranch string
	Attempts   []Attempt
}

// LastError returns the error from the final attempt, or nil if the run
// never attempted anything or the last attempt succeeded.
func (h *History) LastError() error {
	if len(h.Attempts) == 0 {
		return nil
	}
	return h.Attempts[len(h.Attempts)-1].Err
}

// ExhaustedError is returned when every attempt in a retry run failed.
type ExhaustedError struct {
	RunID    string
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: run %s exhausted after %d attempts: %v", e.RunID, e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

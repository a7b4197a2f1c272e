package retry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agit-dev/agit/pkg/engine"
	"github.com/agit-dev/agit/pkg/log"
	"github.com/agit-dev/agit/pkg/repo"
)

// Engine retries an action with branch-per-attempt isolation: attempt 0
// runs on the caller's current branch, every later attempt runs on its
// own retry/<run_id>/attempt-<n> branch forked from the pre-retry base
// commit, and a successful attempt after attempt 0 merges back into the
// base branch with the "theirs" strategy.
type Engine struct {
	exec   *engine.Engine
	logger zerolog.Logger
}

func New(e *engine.Engine) *Engine {
	return &Engine{exec: e, logger: log.WithComponent("retry")}
}

// ExecuteWithRetry runs action up to maxRetries+1 times. baseDelay is
// the backoff unit: attempt n (n >= 1) sleeps baseDelay * 2^(n-1) before
// running, measured off the monotonic clock time.Since reads from.
func (re *Engine) ExecuteWithRetry(
	state repo.AgentState,
	message, author string,
	actionType repo.ActionType,
	maxRetries int,
	baseDelay time.Duration,
	action engine.ActionFunc,
) (*repo.Commit, repo.AgentState, *History, error) {
	runID := uuid.NewString()[:8]
	logger := log.WithRunID(runID)

	baseBranch, detached, err := re.exec.CurrentBranch()
	if err != nil {
		return nil, state, nil, err
	}
	if detached || baseBranch == "" {
		baseBranch = "main"
		if err := re.exec.Checkout(baseBranch); err != nil {
			return nil, state, nil, err
		}
	}

	baseCommit, err := re.exec.Repository().Commit(state, "pre-retry-base: "+message, author, repo.ActionCheckpoint, nil)
	if err != nil {
		return nil, state, nil, err
	}

	history := &History{RunID: runID, BaseBranch: baseBranch}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		branch := baseBranch
		if attempt > 0 {
			branch = fmt.Sprintf("retry/%s/attempt-%d", runID, attempt)
			if err := re.exec.Branch(branch, baseCommit.ID); err != nil {
				return nil, state, history, err
			}
			delay := backoff(baseDelay, attempt)
			logger.Debug().Int("attempt", attempt).Dur("delay", delay).Msg("backing off before retry attempt")
			time.Sleep(delay)
		}
		if err := re.exec.Checkout(branch); err != nil {
			return nil, state, history, err
		}
		log.WithBranch(branch).Debug().Int("attempt", attempt).Msg("running attempt")

		commit, newState, err := re.exec.Execute(state, message, author, actionType, action)
		record := Attempt{Attempt: attempt, Branch: branch}
		if err != nil {
			record.Err = err
			history.Attempts = append(history.Attempts, record)
			logger.Warn().Int("attempt", attempt).Err(err).Msg("retry attempt failed")
			if cerr := re.exec.Checkout(baseBranch); cerr != nil {
				return nil, state, history, cerr
			}
			continue
		}

		record.Success = true
		record.Commit = commit
		history.Attempts = append(history.Attempts, record)

		if attempt > 0 {
			if err := re.exec.Checkout(baseBranch); err != nil {
				return nil, state, history, err
			}
			if _, err := re.exec.Merge(branch, repo.MergeTheirs, author, fmt.Sprintf("retry succeeded on attempt %d", attempt)); err != nil {
				return nil, state, history, err
			}
		}
		logger.Info().Int("attempt", attempt).Msg("retry run succeeded")
		return commit, newState, history, nil
	}

	return nil, state, history, &ExhaustedError{
		RunID:    runID,
		Attempts: len(history.Attempts),
		LastErr:  history.LastError(),
	}
}

func backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return base * time.Duration(uint64(1)<<uint(attempt-1))
}

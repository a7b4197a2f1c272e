package main

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
	"github.com/agit-dev/agit/pkg/retry"
)

var retryCmd = &cobra.Command{
	Use:   "retry -- COMMAND [ARGS...]",
	Short: "Run a shell command as a retried action, with branch-per-attempt isolation",
	Long: `retry wraps COMMAND in the retry engine: attempt 0 runs on the current
branch, every later attempt runs on its own retry/<run_id>/attempt-<n>
branch, with exponential backoff between attempts. The command's combined
stdout+stderr becomes the action's result, tagged into memory.last_result
on success.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		maxRetries, _ := cmd.Flags().GetInt("max-retries")
		baseDelay, _ := cmd.Flags().GetDuration("base-delay")
		message, _ := cmd.Flags().GetString("message")
		if message == "" {
			message = "run: " + args[0]
		}

		e, r, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		state, err := e.GetCurrentState()
		if err != nil {
			return fmt.Errorf("load current state: %w", err)
		}

		action := func(_ repo.AgentState) (objstore.Value, error) {
			out, runErr := exec.Command(args[0], args[1:]...).CombinedOutput()
			if runErr != nil {
				return objstore.Value{}, fmt.Errorf("%s: %w\n%s", args[0], runErr, out)
			}
			return objstore.String(string(out)), nil
		}

		re := retry.New(e)
		_, _, history, err := re.ExecuteWithRetry(state, message, authorFlag(cmd), repo.ActionToolCall, maxRetries, baseDelay, action)
		for _, a := range history.Attempts {
			status := "failed"
			if a.Success {
				status = "ok"
			}
			fmt.Printf("attempt %d on %s: %s\n", a.Attempt, a.Branch, status)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Succeeded after %d attempt(s), run %s\n", len(history.Attempts), history.RunID)
		return nil
	},
}

func init() {
	retryCmd.Flags().Int("max-retries", 3, "Maximum additional attempts after the first")
	retryCmd.Flags().Duration("base-delay", time.Second, "Backoff unit; attempt n sleeps base-delay * 2^(n-1)")
	retryCmd.Flags().String("message", "", "Commit message prefix for attempts")
}

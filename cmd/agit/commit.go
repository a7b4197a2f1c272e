package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agit-dev/agit/pkg/repo"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record a new commit from the current state plus field overrides",
	Long: `Commit loads the state at --ref (default HEAD), replaces its memory
and/or world_state with the JSON given in --memory and --world-state
(a field whose flag is not given is kept as it was), and commits the
result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		ref, _ := cmd.Flags().GetString("ref")
		actionType, _ := cmd.Flags().GetString("action-type")
		memoryJSON, _ := cmd.Flags().GetString("memory")
		worldJSON, _ := cmd.Flags().GetString("world-state")

		if message == "" {
			return fmt.Errorf("--message is required")
		}

		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		state, err := r.GetState(ref)
		if err != nil {
			return fmt.Errorf("load state at %s: %w", ref, err)
		}

		if memoryJSON != "" {
			v, err := parseValueJSON(memoryJSON)
			if err != nil {
				return fmt.Errorf("--memory: %w", err)
			}
			state.Memory = v
		}
		if worldJSON != "" {
			v, err := parseValueJSON(worldJSON)
			if err != nil {
				return fmt.Errorf("--world-state: %w", err)
			}
			state.WorldState = v
		}

		c, err := r.Commit(state, message, authorFlag(cmd), repo.ActionType(actionType), nil)
		if err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		fmt.Printf("Committed %s\n", c.ID)
		return nil
	},
}

func init() {
	commitCmd.Flags().String("message", "", "Commit message (required)")
	commitCmd.Flags().String("ref", "HEAD", "Base state to commit on top of")
	commitCmd.Flags().String("action-type", string(repo.ActionUserInput), "Action type tag recorded on the commit")
	commitCmd.Flags().String("memory", "", "JSON object to replace the memory field with")
	commitCmd.Flags().String("world-state", "", "JSON object to replace the world_state field with")
}

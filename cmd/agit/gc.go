package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove objects unreachable from any branch or detached HEAD",
	RunE: func(cmd *cobra.Command, args []string) error {
		keepLastN, _ := cmd.Flags().GetInt("keep-last-n")

		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		removed, err := r.GC(keepLastN)
		if err != nil {
			return fmt.Errorf("gc: %w", err)
		}
		fmt.Printf("Removed %d unreachable objects\n", removed)
		return nil
	},
}

func init() {
	gcCmd.Flags().Int("keep-last-n", 0, "Accepted for API symmetry; reachability from a branch/HEAD is the only pruning criterion")
}

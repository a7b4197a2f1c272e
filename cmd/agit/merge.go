package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agit-dev/agit/pkg/repo"
)

var mergeCmd = &cobra.Command{
	Use:   "merge SOURCE",
	Short: "Merge source into the currently checked-out branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, _ := cmd.Flags().GetString("strategy")
		message, _ := cmd.Flags().GetString("message")
		if message == "" {
			message = "merge " + args[0]
		}

		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		c, err := r.Merge(args[0], repo.MergeStrategy(strategy), authorFlag(cmd), message)
		if err != nil {
			return fmt.Errorf("merge %s: %w", args[0], err)
		}
		fmt.Printf("Merged %s into current branch: %s\n", args[0], c.ID)
		if conflicts, ok := c.Metadata["merge_conflicts"]; ok {
			fmt.Printf("Conflicts resolved in favor of ours: %v\n", conflicts)
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().String("strategy", string(repo.MergeThreeWay), "Merge strategy: ours, theirs, or three_way")
	mergeCmd.Flags().String("message", "", "Merge commit message")
}

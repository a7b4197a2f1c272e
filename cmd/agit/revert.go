package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert REF",
	Short: "Commit the state recorded at ref on top of the current HEAD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		c, err := r.Revert(args[0], authorFlag(cmd))
		if err != nil {
			return fmt.Errorf("revert to %s: %w", args[0], err)
		}
		fmt.Printf("Reverted to %s, new commit: %s\n", args[0], c.ID)
		return nil
	},
}

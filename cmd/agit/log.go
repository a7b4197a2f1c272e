package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log [ref]",
	Short: "Show commit history, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := "HEAD"
		if len(args) == 1 {
			ref = args[0]
		}
		limit, _ := cmd.Flags().GetInt("limit")

		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		commits, err := r.Log(ref, limit)
		if err != nil {
			return fmt.Errorf("log: %w", err)
		}

		for _, c := range commits {
			fmt.Printf("commit %s\n", c.ID)
			fmt.Printf("Author: %s\n", c.Author)
			fmt.Printf("Date:   %s\n", c.Timestamp)
			fmt.Printf("Action: %s\n", c.ActionType)
			if len(c.ParentHashes) > 1 {
				fmt.Printf("Merge:  %v\n", c.ParentHashes)
			}
			fmt.Printf("\n    %s\n\n", c.Message)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().Int("limit", 20, "Maximum number of commits to show (0 for unlimited)")
}

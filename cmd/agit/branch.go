package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch [name] [start-point]",
	Short: "List, create, or delete branches",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		if len(args) == 0 {
			names, err := r.ListBranches()
			if err != nil {
				return fmt.Errorf("list branches: %w", err)
			}
			current, detached, err := r.CurrentBranch()
			if err != nil {
				return fmt.Errorf("current branch: %w", err)
			}
			for _, name := range names {
				marker := "  "
				if !detached && name == current {
					marker = "* "
				}
				fmt.Println(marker + name)
			}
			return nil
		}

		name := args[0]
		startPoint := ""
		if len(args) == 2 {
			startPoint = args[1]
		}
		if err := r.Branch(name, startPoint); err != nil {
			return fmt.Errorf("create branch %s: %w", name, err)
		}
		fmt.Printf("Created branch %s\n", name)
		return nil
	},
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		if err := r.DeleteBranch(args[0]); err != nil {
			return fmt.Errorf("delete branch %s: %w", args[0], err)
		}
		fmt.Printf("Deleted branch %s\n", args[0])
		return nil
	},
}

func init() {
	branchCmd.AddCommand(branchDeleteCmd)
}

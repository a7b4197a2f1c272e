package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff FROM TO",
	Short: "Show field-level differences between two refs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		entries, err := r.Diff(args[0], args[1])
		if err != nil {
			return fmt.Errorf("diff: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("no differences")
			return nil
		}
		for _, e := range entries {
			switch e.Kind {
			case "added":
				fmt.Printf("+ %s = %v\n", e.Path, e.New)
			case "removed":
				fmt.Printf("- %s (was %v)\n", e.Path, e.Old)
			default:
				fmt.Printf("~ %s: %v -> %v\n", e.Path, e.Old, e.New)
			}
		}
		return nil
	},
}

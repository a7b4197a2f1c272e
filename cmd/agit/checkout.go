package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout NAME",
	Short: "Move HEAD to a branch (symbolic) or commit id/prefix (detached)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		if err := r.Checkout(args[0]); err != nil {
			return fmt.Errorf("checkout %s: %w", args[0], err)
		}
		fmt.Printf("Switched to %s\n", args[0])
		return nil
	},
}

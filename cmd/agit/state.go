package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect agent state",
}

var stateGetCmd = &cobra.Command{
	Use:   "get [ref]",
	Short: "Print the memory and world_state recorded at ref (default HEAD)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := "HEAD"
		if len(args) == 1 {
			ref = args[0]
		}

		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		state, err := r.GetState(ref)
		if err != nil {
			return fmt.Errorf("get state at %s: %w", ref, err)
		}
		return printJSON(stateToNative(state))
	},
}

func init() {
	stateCmd.AddCommand(stateGetCmd)
}

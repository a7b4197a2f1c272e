package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new agit repository with an empty root commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		empty := repo.AgentState{Memory: objstore.Map(nil), WorldState: objstore.Map(nil)}
		c, err := r.Commit(empty, "initial commit", authorFlag(cmd), repo.ActionCheckpoint, nil)
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}

		fmt.Printf("Initialized agit repository in %s\n", dataDirFlag(cmd))
		fmt.Printf("  commit: %s\n", c.ID)
		fmt.Printf("  branch: main\n")
		return nil
	},
}

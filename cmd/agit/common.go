package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agit-dev/agit/pkg/engine"
	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
)

func dataDirFlag(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("data-dir")
	return dir
}

func authorFlag(cmd *cobra.Command) string {
	author, _ := cmd.Flags().GetString("author")
	return author
}

func openRepository(cmd *cobra.Command) (*repo.Repository, error) {
	r, err := repo.Open(dataDirFlag(cmd))
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return r, nil
}

func openEngine(cmd *cobra.Command) (*engine.Engine, *repo.Repository, error) {
	r, err := openRepository(cmd)
	if err != nil {
		return nil, nil, err
	}
	gcEvery, _ := cmd.Flags().GetInt("gc-every")
	return engine.New(r, gcEvery), r, nil
}

// parseValueJSON parses a JSON document (object, array, or scalar) into
// an objstore.Value, the same shape a commit's memory or world_state
// field is stored as.
func parseValueJSON(raw string) (objstore.Value, error) {
	if raw == "" {
		return objstore.Map(nil), nil
	}
	var native any
	if err := json.Unmarshal([]byte(raw), &native); err != nil {
		return objstore.Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return objstore.FromNative(native)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func stateToNative(s repo.AgentState) map[string]any {
	return map[string]any{
		"memory":      s.Memory.Native(),
		"world_state": s.WorldState.Native(),
	}
}

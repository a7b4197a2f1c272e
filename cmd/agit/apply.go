package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agit-dev/agit/pkg/objstore"
	"github.com/agit-dev/agit/pkg/repo"
)

// agentStateManifest is a declarative commit, the same apiVersion/kind/
// metadata/spec envelope warren's "apply" command reads service
// definitions in.
type agentStateManifest struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		Message    string `yaml:"message"`
		Author     string `yaml:"author,omitempty"`
		ActionType string `yaml:"actionType,omitempty"`
		Ref        string `yaml:"ref,omitempty"`
	} `yaml:"metadata"`
	Spec struct {
		Memory     map[string]interface{} `yaml:"memory,omitempty"`
		WorldState map[string]interface{} `yaml:"worldState,omitempty"`
	} `yaml:"spec"`
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a declarative AgentState manifest",
	Long: `Apply commits a YAML manifest describing a desired memory/world_state
overlay on top of a base ref.

Example manifest:

  apiVersion: agit/v1
  kind: AgentState
  metadata:
    message: "seed initial plan"
    actionType: system_event
  spec:
    memory:
      step: 0
    worldState: {}
`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML manifest to apply (required)")
	applyCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var manifest agentStateManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if manifest.Kind != "AgentState" {
		return fmt.Errorf("unsupported manifest kind %q, expected AgentState", manifest.Kind)
	}
	if manifest.Metadata.Message == "" {
		return fmt.Errorf("metadata.message is required")
	}

	ref := manifest.Metadata.Ref
	if ref == "" {
		ref = "HEAD"
	}
	actionType := repo.ActionType(manifest.Metadata.ActionType)
	if actionType == "" {
		actionType = repo.ActionSystemEvent
	}
	author := manifest.Metadata.Author
	if author == "" {
		author = authorFlag(cmd)
	}

	r, err := openRepository(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	state, err := r.GetState(ref)
	if err != nil {
		return fmt.Errorf("load base state at %s: %w", ref, err)
	}

	if manifest.Spec.Memory != nil {
		v, err := objstore.FromNative(toAnyMap(manifest.Spec.Memory))
		if err != nil {
			return fmt.Errorf("spec.memory: %w", err)
		}
		state.Memory = v
	}
	if manifest.Spec.WorldState != nil {
		v, err := objstore.FromNative(toAnyMap(manifest.Spec.WorldState))
		if err != nil {
			return fmt.Errorf("spec.worldState: %w", err)
		}
		state.WorldState = v
	}

	c, err := r.Commit(state, manifest.Metadata.Message, author, actionType, nil)
	if err != nil {
		return fmt.Errorf("commit manifest: %w", err)
	}
	fmt.Printf("Applied %s: commit %s\n", filename, c.ID)
	return nil
}

// toAnyMap widens a map[string]interface{} to map[string]any, the type
// objstore.FromNative expects at its map branch.
func toAnyMap(m map[string]interface{}) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

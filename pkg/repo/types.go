package repo

import (
	"regexp"

	"github.com/agit-dev/agit/pkg/objstore"
)

// ActionType tags why a commit was made.
type ActionType string

const (
	ActionToolCall     ActionType = "tool_call"
	ActionLLMResponse  ActionType = "llm_response"
	ActionCheckpoint   ActionType = "checkpoint"
	ActionRollback     ActionType = "rollback"
	ActionRetry        ActionType = "retry"
	ActionMerge        ActionType = "merge"
	ActionSystemEvent  ActionType = "system_event"
	ActionUserInput    ActionType = "user_input"
)

func (a ActionType) valid() bool {
	switch a {
	case ActionToolCall, ActionLLMResponse, ActionCheckpoint, ActionRollback,
		ActionRetry, ActionMerge, ActionSystemEvent, ActionUserInput:
		return true
	}
	return false
}

// AgentState is the two-part state an agit repository versions: a
// memory tree and a world_state tree, each an objstore.Value.
type AgentState struct {
	Memory     objstore.Value
	WorldState objstore.Value
}

func (s AgentState) toValue() objstore.Value {
	return objstore.Map(map[string]objstore.Value{
		"memory":      s.Memory,
		"world_state": s.WorldState,
	})
}

func stateFromValue(v objstore.Value) (AgentState, error) {
	m, ok := v.AsMap()
	if !ok {
		return AgentState{}, newErr(KindCorrupted, "blob is not a map")
	}
	memory, ok := m["memory"]
	if !ok {
		memory = objstore.Null()
	}
	world, ok := m["world_state"]
	if !ok {
		world = objstore.Null()
	}
	return AgentState{Memory: memory, WorldState: world}, nil
}

// Commit is the wire form of one commit record.
type Commit struct {
	ID           string         `json:"id"`
	TreeHash     string         `json:"tree_hash"`
	ParentHashes []string       `json:"parent_hashes"`
	Message      string         `json:"message"`
	Author       string         `json:"author"`
	Timestamp    string         `json:"timestamp"` // ISO-8601 UTC, e.g. 2026-08-01T12:00:00Z
	ActionType   ActionType     `json:"action_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// DiffEntry is one field-level change between two states.
type DiffEntry struct {
	Path string `json:"path"`
	Kind string `json:"kind"` // added | removed | changed
	Old  any    `json:"old,omitempty"`
	New  any    `json:"new,omitempty"`
}

// MaxMessageBytes bounds a commit message's length.
const MaxMessageBytes = 4096

var branchNameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]{0,254}$`)

// ValidBranchName reports whether name satisfies agit's branch naming
// rule: starts with an alphanumeric, followed by up to 254 more
// alphanumeric/dot/underscore/slash/hyphen characters.
func ValidBranchName(name string) bool {
	return branchNameRE.MatchString(name)
}

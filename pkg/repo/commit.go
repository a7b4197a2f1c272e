package repo

import "encoding/json"

// commitWire is the exact byte-for-byte shape hashed to produce a
// commit's id and stored as its object payload. Field order is fixed
// by struct declaration, and encoding/json sorts map keys, so two
// commits with identical field values always serialize identically
// regardless of construction order elsewhere in the program (I6).
type commitWire struct {
	TreeHash     string         `json:"tree_hash"`
	ParentHashes []string       `json:"parent_hashes"`
	Message      string         `json:"message"`
	Author       string         `json:"author"`
	Timestamp    string         `json:"timestamp"`
	ActionType   string         `json:"action_type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func toWire(c Commit) commitWire {
	parents := c.ParentHashes
	if parents == nil {
		parents = []string{}
	}
	return commitWire{
		TreeHash:     c.TreeHash,
		ParentHashes: parents,
		Message:      c.Message,
		Author:       c.Author,
		Timestamp:    c.Timestamp,
		ActionType:   string(c.ActionType),
		Metadata:     c.Metadata,
	}
}

func encodeCommitPayload(c Commit) []byte {
	data, _ := json.Marshal(toWire(c))
	return data
}

func decodeCommitPayload(data []byte) (Commit, error) {
	var w commitWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Commit{}, wrapErr(KindCorrupted, "commit object is not valid JSON", err)
	}
	return Commit{
		TreeHash:     w.TreeHash,
		ParentHashes: w.ParentHashes,
		Message:      w.Message,
		Author:       w.Author,
		Timestamp:    w.Timestamp,
		ActionType:   ActionType(w.ActionType),
		Metadata:     w.Metadata,
	}, nil
}

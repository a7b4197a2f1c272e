package repo

import (
	"encoding/json"

	"github.com/agit-dev/agit/pkg/crypto"
	"github.com/agit-dev/agit/pkg/objstore"
)

// encodeBlob canonicalizes state into the bytes stored under its tree
// hash. When enc is non-nil, the memory and world_state fields are
// sealed independently into ENC:-prefixed strings before the
// surrounding map is canonicalized, so either field can be inspected
// (or fail to decrypt) without touching the other.
func encodeBlob(state AgentState, enc *crypto.FieldEncryptor) ([]byte, error) {
	memory := state.Memory
	world := state.WorldState

	if enc != nil {
		sealedMemory, err := sealField(memory, enc)
		if err != nil {
			return nil, wrapErr(KindInvalidInput, "encrypt memory field", err)
		}
		sealedWorld, err := sealField(world, enc)
		if err != nil {
			return nil, wrapErr(KindInvalidInput, "encrypt world_state field", err)
		}
		memory = sealedMemory
		world = sealedWorld
	}

	blob := objstore.Map(map[string]objstore.Value{
		"memory":      memory,
		"world_state": world,
	})
	return blob.Canonical(), nil
}

func sealField(v objstore.Value, enc *crypto.FieldEncryptor) (objstore.Value, error) {
	wire, err := enc.Seal(v.Canonical())
	if err != nil {
		return objstore.Value{}, err
	}
	return objstore.String(wire), nil
}

// decodeBlob parses stored blob bytes back into an AgentState, opening
// any ENC:-sealed fields along the way. A blob field that was never
// encrypted passes through untouched, so decoding is transparent to
// whether encryption is currently configured (P10).
func decodeBlob(data []byte, enc *crypto.FieldEncryptor) (AgentState, error) {
	var native any
	if err := json.Unmarshal(data, &native); err != nil {
		return AgentState{}, wrapErr(KindCorrupted, "blob is not valid JSON", err)
	}
	v, err := objstore.FromNative(native)
	if err != nil {
		return AgentState{}, wrapErr(KindCorrupted, "blob has unsupported value shape", err)
	}
	state, err := stateFromValue(v)
	if err != nil {
		return AgentState{}, err
	}

	memory, err := openFieldIfSealed(state.Memory, enc)
	if err != nil {
		return AgentState{}, wrapErr(KindCorrupted, "decrypt memory field", err)
	}
	world, err := openFieldIfSealed(state.WorldState, enc)
	if err != nil {
		return AgentState{}, wrapErr(KindCorrupted, "decrypt world_state field", err)
	}
	return AgentState{Memory: memory, WorldState: world}, nil
}

func openFieldIfSealed(v objstore.Value, enc *crypto.FieldEncryptor) (objstore.Value, error) {
	s, ok := v.AsString()
	if !ok || !crypto.IsEncrypted(s) {
		return v, nil
	}
	if enc == nil {
		return objstore.Value{}, newErr(KindInvalidInput, "field is encrypted but no encryption key is set")
	}
	plaintext, err := enc.Open(s)
	if err != nil {
		return objstore.Value{}, err
	}
	var native any
	if err := json.Unmarshal(plaintext, &native); err != nil {
		return objstore.Value{}, err
	}
	return objstore.FromNative(native)
}

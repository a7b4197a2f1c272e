// Package crypto provides field-level authenticated encryption for the
// memory and world_state halves of an agent state blob. Every encrypted
// field is wrapped as "ENC:" followed by base64 of (nonce ‖ AES-256-GCM
// ciphertext), so an encrypted and a plaintext blob are distinguishable
// by prefix alone. There is no unauthenticated fallback mode: a cipher
// that cannot be constructed is a hard error, never a silent passthrough.
package crypto

package auction

import "fmt"

// validatePubkey checks a claimed builder pubkey at registration. Pubkeys
// are opaque byte strings by default; with strict validation enabled (blst
// build) they must be valid 48-byte compressed BLS12-381 G1 points, the key
// format relays expect from builders.
func validatePubkey(pk []byte, strict bool) error {
	if len(pk) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPubkey)
	}
	if strict {
		return blsKeyCheck(pk)
	}
	return nil
}

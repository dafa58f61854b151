//go:build !blst

package auction

import "fmt"

// blsAvailable reports whether strict pubkey validation is compiled in.
const blsAvailable = false

// blsKeyCheck is unavailable without the blst build tag. Config.Validate
// rejects StrictPubkeys on such builds, so reaching this is a programming
// error surfaced as a plain failure rather than a false accept.
func blsKeyCheck(pk []byte) error {
	return fmt.Errorf("%w: strict validation requires the blst build tag", ErrInvalidPubkey)
}

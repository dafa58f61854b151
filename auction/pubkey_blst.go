//go:build blst

// Real BLS12-381 pubkey validation using the supranational/blst library.
//
// Build with: go build -tags blst

package auction

import (
	"fmt"

	blst "github.com/supranational/blst/bindings/go"
)

// blsAvailable reports whether strict pubkey validation is compiled in.
const blsAvailable = true

// blsPubkeySize is the compressed G1 point size (MinPk scheme).
const blsPubkeySize = 48

// blsKeyCheck verifies that pk is a valid compressed BLS12-381 G1 public
// key: on the curve, in the correct subgroup, and not the identity.
func blsKeyCheck(pk []byte) error {
	if len(pk) != blsPubkeySize {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidPubkey, blsPubkeySize, len(pk))
	}
	p := new(blst.P1Affine).Uncompress(pk)
	if p == nil || !p.KeyValidate() {
		return fmt.Errorf("%w: not a valid G1 point", ErrInvalidPubkey)
	}
	return nil
}

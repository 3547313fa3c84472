// Package codes generates the human- and machine-readable identifiers handed
// to beneficiaries: voucher codes, QR tokens and pickup codes. Generation is
// side-effect-free besides consuming entropy; uniqueness is enforced by the
// store's unique constraints at insert time.
package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// alphabet excludes visually confusable characters (0/O, 1/I/L) so codes
// survive being read out loud at a pickup counter.
const alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const (
	voucherCodePrefix = "EAT-"
	voucherCodeLength = 6
	pickupCodeLength  = 8
)

// NewVoucherCode returns a human-readable voucher code of the form EAT-XXXXXX.
func NewVoucherCode() string {
	return voucherCodePrefix + randomFromAlphabet(voucherCodeLength)
}

// NewQRToken returns an opaque, globally-unique token suitable for embedding
// in a QR payload: a time component plus a random component.
func NewQRToken() string {
	return fmt.Sprintf("%x-%s", time.Now().UnixNano(),
		strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// NewPickupCode returns the code a beneficiary presents when collecting a
// surplus claim.
func NewPickupCode() string {
	return randomFromAlphabet(pickupCodeLength)
}

func randomFromAlphabet(length int) string {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a time-derived index rather than panic mid-request.
			n = big.NewInt(time.Now().UnixNano() % int64(len(alphabet)))
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String()
}

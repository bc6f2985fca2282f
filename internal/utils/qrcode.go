package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// TicketCodeBytes controls the entropy of generated ticket codes.  16
// random bytes hex-encode to 32 characters, well inside the 10–255
// range scanning integrations accept.
const TicketCodeBytes = 16

// GenerateTicketCode returns the opaque validation token embedded in a
// ticket's QR code.  The token is an upper-case hex string backed by
// crypto/rand; uniqueness is ultimately enforced by the database
// constraint on tickets.qr_code.
func GenerateTicketCode() (string, error) {
	buf := make([]byte, TicketCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

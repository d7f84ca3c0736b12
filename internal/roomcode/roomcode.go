// Package roomcode generates and validates the identifiers a session hands
// out: the human-shareable 4-character room code and the role-prefixed
// participant/session ids.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Alphabet deliberately omits glyphs that read ambiguously when shared by
// voice or handwriting: 0/O and 1/I/L.
const Alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// Length of a room code in characters.
const Length = 4

const (
	prefixParticipant = "p"
	prefixSession     = "s"
)

// Generate returns a random room code. Codes are not unique by construction;
// the session layer retries against the live store on collision.
func Generate() string {
	var sb strings.Builder
	sb.Grow(Length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken.
			panic(fmt.Sprintf("roomcode: read random: %v", err))
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}
	return sb.String()
}

// IsValid reports whether code, after upper-casing, is exactly Length
// characters drawn from the safe alphabet.
func IsValid(code string) bool {
	if len(code) != Length {
		return false
	}
	for _, r := range strings.ToUpper(code) {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}

// Normalize upper-cases a code for storage and comparison. Lookup is
// case-insensitive; the canonical form is upper-case.
func Normalize(code string) string {
	return strings.ToUpper(code)
}

// Format renders a code for display, characters separated by single spaces.
// Never used for comparison.
func Format(code string) string {
	up := strings.ToUpper(code)
	parts := make([]string, 0, len(up))
	for _, r := range up {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, " ")
}

// DeepLink returns the join URI for a code, for share/QR consumers.
func DeepLink(code string) string {
	return "quickpick://join/" + Normalize(code)
}

// NewParticipantID returns a unique participant id of the form
// p_<unix-ms>_<suffix>.
func NewParticipantID() string {
	return newID(prefixParticipant)
}

// NewSessionID returns a unique session id of the form s_<unix-ms>_<suffix>.
func NewSessionID() string {
	return newID(prefixSession)
}

func newID(prefix string) string {
	ms := strconv.FormatInt(time.Now().UnixMilli(), 10)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return prefix + "_" + ms + "_" + suffix
}

// Package idgen derives short, stable, content-addressed identifiers.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// base36Alphabet is the character set for base36 encoding (0-9, a-z).
const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// EncodeBase36 converts a byte slice to a base36 string of the given length,
// left-zero-padded or truncated to its least-significant digits.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)

	var result strings.Builder
	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}

	for i := len(chars) - 1; i >= 0; i-- {
		result.WriteByte(chars[i])
	}

	str := result.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	if len(str) > length {
		str = str[len(str)-length:]
	}

	return str
}

// numBytesForLength mirrors the bit-width babel uses per requested
// base36 length (3-8 chars); other lengths fall back to a 3-byte width.
func numBytesForLength(length int) int {
	switch length {
	case 3:
		return 2
	case 4:
		return 3
	case 5, 6:
		return 4
	case 7, 8:
		return 5
	default:
		return 3
	}
}

// ContentHash derives a stable base36 digest from arbitrary content
// fields plus a timestamp and a nonce (for deterministic collision
// retries). The same inputs always produce the same digest, in this
// process or any other — this is the event log's ID generation primitive.
func ContentHash(length int, timestamp time.Time, nonce int, parts ...string) string {
	content := strings.Join(parts, "|") + fmt.Sprintf("|%d|%d", timestamp.UnixNano(), nonce)
	sum := sha256.Sum256([]byte(content))
	return EncodeBase36(sum[:numBytesForLength(length)], length)
}

// PrefixedHash formats a content hash with a type prefix, e.g.
// "decision_9wt4w". Two ids built from the same hash but different
// prefixes are guaranteed to differ as full strings (spec invariant 7).
func PrefixedHash(prefix string, length int, timestamp time.Time, nonce int, parts ...string) string {
	return fmt.Sprintf("%s_%s", prefix, ContentHash(length, timestamp, nonce, parts...))
}

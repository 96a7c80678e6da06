// Package idalias implements the AA-BB short-code alias for node ids:
// a deterministic, stateless, pure-hash encoding with no registry.
package idalias

import (
	"crypto/sha256"
	"regexp"
	"strings"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Pattern is the code's canonical shape: two uppercase letters, a
// hyphen, two uppercase letters.
var Pattern = regexp.MustCompile(`^[A-Z]{2}-[A-Z]{2}$`)

// Encode derives the AA-BB alias for an id. Pure function of the id's
// bytes: no state, no registry, always the same output for the same
// input (spec invariant 6). Ids that differ only by a type prefix
// ("decision_x" vs "constraint_x") hash differently because the prefix
// is part of the hashed string (invariant 7).
func Encode(id string) string {
	sum := sha256.Sum256([]byte(id))
	idx := func(b byte) byte { return letters[int(b)%len(letters)] }
	return string([]byte{
		idx(sum[0]), idx(sum[1]), '-', idx(sum[2]), idx(sum[3]),
	})
}

// Normalize upper-cases a user-supplied code for comparison; input is
// accepted case-insensitively, output is always uppercase (spec §6).
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Decode resolves a short code against a supplied list of candidate
// ids. It never consults a registry: given the same candidates it is
// a pure function. Returns every candidate whose Encode matches; an
// empty result means no-op (no candidate aliases to this code), more
// than one means the caller must treat it as ambiguous.
func Decode(code string, candidates []string) []string {
	norm := Normalize(code)
	if !Pattern.MatchString(norm) {
		return nil
	}
	var matches []string
	for _, id := range candidates {
		if Encode(id) == norm {
			matches = append(matches, id)
		}
	}
	return matches
}

package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	prefixAnswer = "chat:answer:"
)

func buildKey(prefix, suffix string) []byte {
	buf := make([]byte, 0, len(prefix)+len(suffix))
	buf = append(buf, prefix...)
	return append(buf, suffix...)
}

// NormalizeQuery folds a chat question to its cache identity: NFC, lower case,
// single spaces, no trailing punctuation.
func NormalizeQuery(q string) string {
	q = norm.NFC.String(q)
	q = strings.ToLower(strings.Join(strings.Fields(q), " "))
	return strings.TrimRight(q, " ?!.…")
}

// answerKey hashes the normalized query so keys stay short and uniform.
func answerKey(provider, query string) []byte {
	sum := sha256.Sum256([]byte(provider + "\x00" + NormalizeQuery(query)))
	return buildKey(prefixAnswer, hex.EncodeToString(sum[:16]))
}

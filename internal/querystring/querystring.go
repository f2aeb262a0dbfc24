// Package querystring hashes canonical query strings (the grammar of
// spec.md §6.4), the key used both by validation's structural
// sharing pass and by the query-plan cache.
package querystring

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hash returns a fixed-width, collision-resistant digest of a canonical
// query string, suitable as a map/cache key without retaining the
// (potentially large) string itself.
func Hash(canonical string) string {
	sum := blake2b.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:16])
}

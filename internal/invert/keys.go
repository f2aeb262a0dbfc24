// Package invert provides BadgerDB-backed implementations of the
// InvertedFile/InvertedList/LocationCoder collaborators the query engine
// consumes, adapted from NornicDB's key-prefix storage scheme
// (pkg/storage/badger.go) to the full-text posting-list domain.
package invert

import (
	"encoding/binary"
)

// Key prefixes, single-byte like the original graph engine's scheme, but
// scoped to the posting-list and metadata keyspaces this package owns.
const (
	prefixPosting = byte(0x10) // posting + token + 0x00 + docID(BE u32) -> encoded posting
	prefixMeta    = byte(0x11) // meta + name -> value
)

const (
	metaMaxDocID   = "max_doc_id"
	metaMinDocID   = "min_doc_id"
	metaLastDocID  = "last_doc_id"
	metaTotalDF    = "total_df"
)

func postingPrefix(token string) []byte {
	key := make([]byte, 0, 1+len(token)+1)
	key = append(key, prefixPosting)
	key = append(key, []byte(token)...)
	key = append(key, 0x00)
	return key
}

func postingKey(token string, docID uint32) []byte {
	key := postingPrefix(token)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], docID)
	return append(key, buf[:]...)
}

func docIDFromPostingKey(key []byte, tokenLen int) uint32 {
	off := 1 + tokenLen + 1
	return binary.BigEndian.Uint32(key[off : off+4])
}

func metaKey(name string) []byte {
	return append([]byte{prefixMeta}, []byte(name)...)
}
